package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/skincare/internal/advice"
	"github.com/pbaille/skincare/internal/api"
	"github.com/pbaille/skincare/internal/classifier"
	"github.com/pbaille/skincare/internal/config"
	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/fetcher"
	"github.com/pbaille/skincare/internal/locale"
	"github.com/pbaille/skincare/internal/logging"
	"github.com/pbaille/skincare/internal/recommend"
	"github.com/pbaille/skincare/internal/routine"
	"github.com/pbaille/skincare/internal/store"
	"github.com/pbaille/skincare/internal/trends"
)

var (
	configFile  string
	dbPath      string
	catalogPath string
	langFlag    string
	logLevel    string

	cfg      *config.Config
	logger   = zap.NewNop()
	labels   *locale.Table
	keywords classifier.KeywordTable
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skincare",
		Short:         "Skincare self-tracking: ingredient checks, routines, diary and recommendations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or <data_dir>/config.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "diary database path")
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "product catalog path")
	root.PersistentFlags().StringVar(&langFlag, "lang", "", "display language (en, ja)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(checkCmd())
	root.AddCommand(routineCmd())
	root.AddCommand(recommendCmd())
	root.AddCommand(productsCmd())
	root.AddCommand(diaryCmd())
	root.AddCommand(trendsCmd())
	root.AddCommand(templateCmd())
	root.AddCommand(serveCmd())
	return root
}

func setup() error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if catalogPath != "" {
		c.CatalogPath = catalogPath
	}
	if langFlag != "" {
		c.Lang = langFlag
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c
	logger = logging.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.LabelsPath != "" {
		if labels, err = locale.Load(cfg.LabelsPath); err != nil {
			return err
		}
	} else {
		labels = locale.Default()
	}
	labels = labels.WithFallback(cfg.FallbackLang)

	if cfg.KeywordsPath != "" {
		if keywords, err = classifier.LoadKeywordTable(cfg.KeywordsPath); err != nil {
			return err
		}
	} else {
		keywords = classifier.DefaultKeywordTable()
	}

	logger.Debug("configuration loaded",
		zap.String("db", cfg.DBPath),
		zap.String("catalog", cfg.CatalogPath),
		zap.String("lang", cfg.Lang),
		zap.String("keywords_version", keywords.Version),
	)
	return nil
}

func lang() string {
	return labels.Resolve(cfg.Lang)
}

func label(key string) string {
	return labels.LabelFor(key, lang())
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.DBPath)
}

func getCatalog() ([]domain.Product, error) {
	c := store.NewCatalog(cfg.CatalogPath)
	seeded, err := c.EnsureSeed()
	if err != nil {
		return nil, err
	}
	if seeded {
		logger.Info("seeded default catalog", zap.String("path", c.Path()))
	}
	return c.LoadCatalog()
}

func newRecommender() *recommend.Recommender {
	var opts []recommend.Option
	for name, n := range cfg.Recommend.Quotas {
		if t := domain.ParseProductType(name); t != domain.ProductUnknown {
			opts = append(opts, recommend.WithQuota(t, n))
		}
	}
	return recommend.New(opts...)
}

func checkCmd() *cobra.Command {
	var (
		url       string
		allergies []string
	)

	cmd := &cobra.Command{
		Use:   "check [ingredients]",
		Short: "Classify an ingredient list",
		Long: "Classify an ingredient list given as arguments, on stdin (\"-\") or\n" +
			"fetched from a product page with --url.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			switch {
			case url != "":
				f := fetcher.New(cfg.Fetch.Timeout)
				fetched, err := f.FetchIngredients(cmd.Context(), url)
				if err != nil {
					return err
				}
				text = fetched
			case text == "-":
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no ingredients given")
			}

			if !cmd.Flags().Changed("allergies") {
				allergies = cfg.Profile.Allergies
			}
			clf := classifier.New(keywords, classifier.WithAllergies(allergies))
			res := clf.ClassifyText(text)
			logger.Debug("classified", zap.Int("tokens", len(res.Tokens)), zap.Int("warnings", len(res.Warnings)))

			printCheck(cmd.OutOrStdout(), clf.Version(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "fetch the ingredient list from a product page")
	cmd.Flags().StringSliceVar(&allergies, "allergies", nil, "allergy keywords to flag")
	return cmd
}

func printCheck(out io.Writer, version string, res classifier.Result) {
	fmt.Fprintf(out, "Keywords: %s  Tokens: %d\n\n", version, len(res.Tokens))

	for _, cat := range domain.AllCategories {
		matches := res.Categories[cat]
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(out, "[%s] %s\n", label("category."+cat.String()), strings.Join(matches, ", "))
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  ! %s\n", label("warning."+w.String()))
		}
	}
	if len(res.AllergyMatches) > 0 {
		fmt.Fprintf(out, "  ! %s\n", strings.Join(res.AllergyMatches, ", "))
	}

	fmt.Fprintln(out)
	for _, n := range res.Notes {
		fmt.Fprintf(out, "  - %s\n", label(n))
	}
}

func routineCmd() *cobra.Command {
	var pf profileFlags

	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Generate a morning and evening routine",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := routine.Generate(pf.profile(cmd))
			out := cmd.OutOrStdout()

			printSteps(out, label("ui.am_routine"), r.Morning, r.TotalMinutes(routine.Morning), r.AMBudget)
			fmt.Fprintln(out)
			printSteps(out, label("ui.pm_routine"), r.Evening, r.TotalMinutes(routine.Evening), r.PMBudget)

			fmt.Fprintln(out)
			for _, c := range r.Cautions {
				fmt.Fprintf(out, "  * %s\n", label(c))
			}
			return nil
		},
	}

	pf.register(cmd)
	return cmd
}

func printSteps(out io.Writer, title string, steps []domain.Step, total, budget int) {
	mins := label("ui.minutes")
	fmt.Fprintf(out, "%s (%d/%d %s)\n", title, total, budget, mins)
	for i, st := range steps {
		fmt.Fprintf(out, "  %d. %s (%d %s): %s\n",
			i+1, label("step."+st.Title.String()), st.Minutes, mins, labels.Render(st, lang()))
	}
}

func recommendCmd() *cobra.Command {
	var (
		pf    profileFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend products from the local catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pf.profile(cmd)
			catalog, err := getCatalog()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Recommend.Limit
			}

			picks := newRecommender().Recommend(catalog, p, limit)
			out := cmd.OutOrStdout()
			if len(picks) == 0 {
				fmt.Fprintln(out, label("ui.empty_result"))
				return nil
			}

			for i, s := range picks {
				fmt.Fprintf(out, "%2d. %-36s %-14s %6d  score %.2f\n",
					i+1,
					truncate(s.Product.NameFor(lang(), labels.Fallback), 36),
					label("product_type."+s.Product.Type.String()),
					s.Product.Price,
					s.Score,
				)
			}
			fmt.Fprintf(out, "\nTop 4 total: %d\n", recommend.TotalPrice(picks, 4))
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", recommend.DefaultLimit, "number of products")
	return cmd
}

func productsCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := getCatalog()
			if err != nil {
				return err
			}
			want := domain.ParseProductType(typ)
			out := cmd.OutOrStdout()
			for _, p := range catalog {
				if typ != "" && p.Type != want {
					continue
				}
				fmt.Fprintf(out, "%s  %-36s %-14s %-14s %6d (%d/month)\n",
					p.ID,
					truncate(p.NameFor(lang(), labels.Fallback), 36),
					label("product_type."+p.Type.String()),
					label("scent."+p.Fragrance.String()),
					p.Price,
					p.MonthlyCost(),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only list one product type")
	return cmd
}

func trendsCmd() *cobra.Command {
	var dedup bool

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Summarize sleep, stress and symptoms from the diary",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, label("ui.no_diary"))
				return nil
			}

			var opts []trends.Option
			if dedup {
				opts = append(opts, trends.WithPerEntryDedup())
			}
			sum := trends.Summarize(entries, opts...)

			fmt.Fprintf(out, "Entries:    %d\n", sum.Count)
			fmt.Fprintf(out, "Avg sleep:  %s\n", formatAvg(sum.AvgSleep, "h"))
			fmt.Fprintf(out, "Avg stress: %s\n", formatAvg(sum.AvgStress, "/5"))

			if len(sum.TopSymptoms) > 0 {
				fmt.Fprintf(out, "\nTop symptoms:\n")
				for _, sc := range sum.TopSymptoms {
					fmt.Fprintf(out, "  %-20s %d\n", sc.Label, sc.Count)
				}
			}

			fmt.Fprintf(out, "\nRecent:\n")
			for _, e := range sum.Recent {
				fmt.Fprintf(out, "  %s  %s\n", e.Date, truncate(strings.Join(e.Symptoms, ", "), 60))
			}

			if recent := advice.RecentSymptoms(entries, 7); len(recent) > 0 {
				names := make([]string, len(recent))
				for i, c := range recent {
					names[i] = c.String()
				}
				fmt.Fprintf(out, "\nSuggested templates: %s (skincare template <symptom>)\n", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dedup, "dedup", false, "count each symptom at most once per entry")
	return cmd
}

func formatAvg(v *float64, unit string) string {
	if v == nil {
		return label("ui.not_recorded")
	}
	return fmt.Sprintf("%.2f%s", *v, unit)
}

func templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template [symptom]",
		Short: "Show the care template for a symptom",
		Long: "Show the care template for a symptom (dryness, redness, oiliness or an\n" +
			"alias such as \"tight\" or \"赤み\"). Without an argument the most frequent\n" +
			"symptom of the last week of diary entries is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var found []domain.Concern
			if len(args) == 1 {
				found = advice.SymptomsFromText(args[0])
			} else {
				s, err := getStore()
				if err != nil {
					return err
				}
				defer s.Close()
				entries, err := s.LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				found = advice.RecentSymptoms(entries, 7)
			}
			if len(found) == 0 {
				return fmt.Errorf("no template for %q: %w", strings.Join(args, " "), domain.ErrNotFound)
			}

			tpl, _ := advice.Lookup(found[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[%s]\n", label(tpl.Label))
			sections := tpl.Sections()
			for _, name := range []string{"am", "pm", "avoid", "see_doctor"} {
				fmt.Fprintf(out, "\n%s:\n", label("section."+name))
				for _, k := range sections[name] {
					fmt.Fprintf(out, "  - %s\n", label(k))
				}
			}
			return nil
		},
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			catalog := store.NewCatalog(cfg.CatalogPath)
			if _, err := catalog.EnsureSeed(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			server := api.New(api.Options{
				Store:        s,
				Catalog:      catalog,
				Keywords:     keywords,
				Labels:       labels,
				Fetcher:      fetcher.New(cfg.Fetch.Timeout),
				Recommender:  newRecommender(),
				Limit:        cfg.Recommend.Limit,
				Profile:      configProfile(),
				Lang:         cfg.Lang,
				Addr:         addr,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				Debug:        cfg.Server.Debug,
				Logger:       logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}
