package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/skincare/internal/advice"
	"github.com/pbaille/skincare/internal/domain"
)

func diaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Record and browse daily skin diary entries",
	}
	cmd.AddCommand(diaryAddCmd())
	cmd.AddCommand(diaryListCmd())
	cmd.AddCommand(diaryShowCmd())
	cmd.AddCommand(diaryDeleteCmd())
	cmd.AddCommand(diarySearchCmd())
	cmd.AddCommand(diaryImportCmd())
	return cmd
}

func diaryAddCmd() *cobra.Command {
	var (
		date     string
		symptoms []string
		sleep    float64
		stress   int
		items    []string
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a diary entry",
		Long: "Add a diary entry from flags, or from free text such as\n" +
			"\"dryness, slept 6h, stress 4, used toner\". Flags override what the\n" +
			"text yields.",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := domain.NewDate(time.Now())
			if date != "" {
				d, err := domain.ParseDate(date)
				if err != nil {
					return domain.NewValidationError("date", err.Error())
				}
				day = d
			}

			e := domain.DiaryEntry{Date: day}
			if len(args) > 0 {
				e = advice.ParseJournalText(strings.Join(args, " "), day)
			}

			flags := cmd.Flags()
			if flags.Changed("symptoms") {
				e.Symptoms = symptoms
			}
			if flags.Changed("sleep") {
				e.SleepHours = &sleep
			}
			if flags.Changed("stress") {
				e.StressLevel = &stress
			}
			if flags.Changed("items") {
				e.UsedItems = items
			}
			if flags.Changed("note") {
				e.Note = note
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.AddEntry(cmd.Context(), e)
			if err != nil {
				return err
			}
			logger.Debug("diary entry added", zap.String("id", entry.ID))

			fmt.Fprintf(cmd.OutOrStdout(), "Added entry: %s (%s)\n", entry.ID[:8], entry.Date)
			printEntry(cmd.OutOrStdout(), *entry)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceVar(&symptoms, "symptoms", nil, "symptoms")
	cmd.Flags().Float64Var(&sleep, "sleep", 0, "hours slept")
	cmd.Flags().IntVar(&stress, "stress", 0, "stress level 1-5")
	cmd.Flags().StringSliceVar(&items, "items", nil, "products used")
	cmd.Flags().StringVar(&note, "note", "", "free note")
	return cmd
}

func diaryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.ListEntries(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			printEntryLines(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func diaryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.GetEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", entry.ID)
			fmt.Fprintf(out, "Date:    %s\n", entry.Date)
			fmt.Fprintf(out, "Created: %s\n", entry.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printEntry(out, *entry)
			return nil
		},
	}
}

func diaryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry: %s\n", args[0])
			return nil
		},
	}
}

func diarySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries by symptom, product or note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.SearchEntries(cmd.Context(), args[0], 0, 0)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching entries found.")
				return nil
			}
			printEntryLines(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func diaryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import a journal.jsonl export (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open journal: %w", err)
				}
				defer f.Close()
				r = f
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.ImportJSONL(cmd.Context(), r)
			if err != nil {
				return err
			}
			logger.Info("journal imported", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d skipped)\n", res.Imported, res.Skipped)
			return nil
		},
	}
}

func printEntryLines(out io.Writer, entries []domain.DiaryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, label("ui.no_diary"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s  %s\n", e.ID[:8], e.Date, truncate(strings.Join(e.Symptoms, ", "), 50))
	}
}

func printEntry(out io.Writer, e domain.DiaryEntry) {
	if len(e.Symptoms) > 0 {
		fmt.Fprintf(out, "Symptoms: %s\n", strings.Join(e.Symptoms, ", "))
	}
	if e.SleepHours != nil {
		fmt.Fprintf(out, "Sleep:    %.1fh\n", *e.SleepHours)
	}
	if e.StressLevel != nil {
		fmt.Fprintf(out, "Stress:   %d/5\n", *e.StressLevel)
	}
	if len(e.UsedItems) > 0 {
		fmt.Fprintf(out, "Used:     %s\n", strings.Join(e.UsedItems, ", "))
	}
	if e.Note != "" {
		fmt.Fprintf(out, "Note:\n%s\n", e.Note)
	}
}
