package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbaille/skincare/internal/advice"
	"github.com/pbaille/skincare/internal/classifier"
	"github.com/pbaille/skincare/internal/domain"
	"github.com/pbaille/skincare/internal/routine"
	"github.com/pbaille/skincare/internal/trends"
)

// recentWindow is how many diary entries feed the suggested templates.
const recentWindow = 7

// ProfileRequest is the profile part of a request body. Missing fields
// take the server's default profile; enum strings are parsed leniently.
type ProfileRequest struct {
	SkinType      string   `json:"skin_type"`
	Concerns      []string `json:"concerns"`
	Fragrance     string   `json:"fragrance_preference"`
	MonthlyBudget *int     `json:"monthly_budget"`
	AMMinutes     *int     `json:"am_minutes"`
	PMMinutes     *int     `json:"pm_minutes"`
	Allergies     []string `json:"allergies"`
}

// Profile merges the request over defaults.
func (r ProfileRequest) Profile(defaults domain.Profile) domain.Profile {
	p := defaults
	if r.SkinType != "" {
		p.SkinType = domain.ParseSkinType(r.SkinType)
	}
	if r.Concerns != nil {
		p.Concerns = domain.ParseConcerns(r.Concerns)
	}
	if r.Fragrance != "" {
		p.Fragrance = domain.ParseFragrancePreference(r.Fragrance)
	}
	if r.MonthlyBudget != nil {
		p.MonthlyBudget = *r.MonthlyBudget
	}
	if r.AMMinutes != nil {
		p.AMMinutes = *r.AMMinutes
	}
	if r.PMMinutes != nil {
		p.PMMinutes = *r.PMMinutes
	}
	if r.Allergies != nil {
		p.Allergies = r.Allergies
	}
	return p.Normalized()
}

func (s *Server) lang(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return s.opts.Labels.Resolve(l)
	}
	return s.opts.Labels.Resolve(s.opts.Lang)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"keywords_version": s.opts.Keywords.Version,
		"languages":        s.opts.Labels.Languages(),
	})
}

// CheckRequest is the request body for an ingredient check
type CheckRequest struct {
	Text      string   `json:"text"`
	URL       string   `json:"url"`
	Allergies []string `json:"allergies"`
}

func (s *Server) checkIngredients(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	text := req.Text
	if req.URL != "" {
		if s.opts.Fetcher == nil {
			badRequest(c, "url fetching is disabled")
			return
		}
		fetched, err := s.opts.Fetcher.FetchIngredients(c.Request.Context(), req.URL)
		if err != nil {
			s.log.Warn("fetch ingredients", zap.String("url", req.URL), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		text = fetched
	}
	if strings.TrimSpace(text) == "" {
		badRequest(c, "text or url is required")
		return
	}

	allergies := req.Allergies
	if allergies == nil {
		allergies = s.opts.Profile.Allergies
	}
	clf := classifier.New(s.opts.Keywords, classifier.WithAllergies(allergies))
	res := clf.ClassifyText(text)

	resp := checkView(s.opts.Labels, s.lang(c), clf.Version(), res)
	resp.Source = req.URL
	c.JSON(http.StatusOK, resp)
}

func (s *Server) generateRoutine(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	r := routine.Generate(req.Profile(s.opts.Profile))
	c.JSON(http.StatusOK, routineView(s.opts.Labels, s.lang(c), r))
}

// RecommendRequest is the request body for recommendations
type RecommendRequest struct {
	ProfileRequest
	Limit int `json:"limit"`
}

func (s *Server) recommendProducts(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if s.opts.Catalog == nil {
		s.fail(c, domain.ErrNotFound)
		return
	}

	catalog, err := s.opts.Catalog.Load()
	if err != nil {
		s.fail(c, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.Limit
	}
	picks := s.opts.Recommender.Recommend(catalog, req.ProfileRequest.Profile(s.opts.Profile), limit)
	c.JSON(http.StatusOK, recommendView(s.opts.Labels, s.lang(c), picks))
}

func (s *Server) listProducts(c *gin.Context) {
	if s.opts.Catalog == nil {
		s.fail(c, domain.ErrNotFound)
		return
	}
	catalog, err := s.opts.Catalog.Load()
	if err != nil {
		s.fail(c, err)
		return
	}

	lang := s.lang(c)
	typ := domain.ParseProductType(c.Query("type"))
	views := make([]ProductView, 0, len(catalog))
	for _, p := range catalog {
		if c.Query("type") != "" && p.Type != typ {
			continue
		}
		views = append(views, productView(s.opts.Labels, lang, p))
	}
	c.JSON(http.StatusOK, gin.H{"products": views, "count": len(views)})
}

func (s *Server) listDiary(c *gin.Context) {
	limit := 20
	offset := 0

	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := c.Query("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	ctx := c.Request.Context()
	var (
		entries []domain.DiaryEntry
		err     error
	)
	if q := c.Query("q"); q != "" {
		entries, err = s.opts.Store.SearchEntries(ctx, q, limit, offset)
	} else {
		entries, err = s.opts.Store.ListEntries(ctx, limit, offset)
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// DiaryRequest is the request body for a new diary entry. Text, when set,
// is parsed for symptoms, sleep and stress and fills the fields left empty.
type DiaryRequest struct {
	Date        domain.Date `json:"date"`
	Symptoms    []string    `json:"symptoms"`
	SleepHours  *float64    `json:"sleep_hours"`
	StressLevel *int        `json:"stress_level"`
	UsedItems   []string    `json:"used_items"`
	Note        string      `json:"note"`
	Text        string      `json:"text"`
}

func (r DiaryRequest) entry(today domain.Date) domain.DiaryEntry {
	date := r.Date
	if date.IsZero() {
		date = today
	}

	e := domain.DiaryEntry{Date: date}
	if r.Text != "" {
		e = advice.ParseJournalText(r.Text, date)
	}
	if r.Symptoms != nil {
		e.Symptoms = r.Symptoms
	}
	if r.SleepHours != nil {
		e.SleepHours = r.SleepHours
	}
	if r.StressLevel != nil {
		e.StressLevel = r.StressLevel
	}
	if r.UsedItems != nil {
		e.UsedItems = r.UsedItems
	}
	if r.Note != "" {
		e.Note = r.Note
	}
	return e
}

func (s *Server) addDiary(c *gin.Context) {
	var req DiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	entry, err := s.opts.Store.AddEntry(c.Request.Context(), req.entry(domain.NewDate(time.Now())))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) getDiary(c *gin.Context) {
	entry, err := s.opts.Store.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteDiary(c *gin.Context) {
	if err := s.opts.Store.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) trends(c *gin.Context) {
	entries, err := s.opts.Store.LoadAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	var opts []trends.Option
	if dedup, _ := strconv.ParseBool(c.Query("dedup")); dedup {
		opts = append(opts, trends.WithPerEntryDedup())
	}
	summary := trends.Summarize(entries, opts...)

	lang := s.lang(c)
	var suggested []TemplateView
	for _, sym := range advice.RecentSymptoms(entries, recentWindow) {
		if tpl, ok := advice.Lookup(sym); ok {
			suggested = append(suggested, templateView(s.opts.Labels, lang, tpl))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":   summary,
		"suggested": suggested,
	})
}

func (s *Server) listTemplates(c *gin.Context) {
	lang := s.lang(c)
	views := make([]TemplateView, 0, len(advice.Symptoms))
	for _, sym := range advice.Symptoms {
		tpl, _ := advice.Lookup(sym)
		views = append(views, templateView(s.opts.Labels, lang, tpl))
	}
	c.JSON(http.StatusOK, gin.H{"templates": views})
}

func (s *Server) template(c *gin.Context) {
	found := advice.SymptomsFromText(c.Param("symptom"))
	if len(found) == 0 {
		s.fail(c, domain.ErrNotFound)
		return
	}
	tpl, _ := advice.Lookup(found[0])
	c.JSON(http.StatusOK, templateView(s.opts.Labels, s.lang(c), tpl))
}
