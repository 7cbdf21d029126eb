// Package server exposes the ingestion pipeline over HTTP. Thin glue:
// handlers validate input, delegate, and shape structured JSON responses.
// Upstream flakiness never becomes a 500; only store failures do.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BigE06/job-agent-mvp/internal/ingest"
	"github.com/BigE06/job-agent-mvp/internal/scrape"
	"github.com/BigE06/job-agent-mvp/internal/store"
)

// Server wires the HTTP surface to the pipeline components.
type Server struct {
	store     store.Store
	ingestor  *ingest.Ingestor
	enricher  *scrape.Enricher
	extractor *scrape.Extractor
}

// New constructs a Server.
func New(st store.Store, ing *ingest.Ingestor, en *scrape.Enricher, ex *scrape.Extractor) *Server {
	return &Server{store: st, ingestor: ing, enricher: en, extractor: ex}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/jobs", s.listJobs)
	r.POST("/jobs/import", s.importJobs)
	r.POST("/jobs/scrape", s.triggerScrape)
	r.POST("/jobs/scrape-sync", s.triggerScrapeSync)
	r.POST("/jobs/:id/enrich", s.enrichJob)
	r.POST("/jobs/scrape-details", s.scrapeDetails)
	r.POST("/jobs/rank", s.rankJobs)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	jobs, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if jobs == nil {
		jobs = []store.JobRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// scrapeRequest triggers an ingestion run.
type scrapeRequest struct {
	Query    string `json:"query"`
	Country  string `json:"country"`
	Location string `json:"location"`
}

// triggerScrape queues a background run and returns immediately. The run
// always completes or fails on its own; no cancellation is wired to the
// request context.
func (s *Server) triggerScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "query is required"})
		return
	}

	go func() {
		summary := s.ingestor.Run(context.Background(), req.Query, req.Country, req.Location)
		slog.Info("scrape: background run finished",
			slog.String("query", req.Query), slog.String("status", summary.Status))
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"query":  req.Query,
	})
}

func (s *Server) triggerScrapeSync(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "query is required"})
		return
	}

	summary := s.ingestor.Run(c.Request.Context(), req.Query, req.Country, req.Location)
	if summary.Status == "error" {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) enrichJob(c *gin.Context) {
	result := s.enricher.EnrichIfShort(c.Request.Context(), c.Param("id"))
	switch {
	case result.Status == scrape.StatusError && result.Reason == "job not found":
		c.JSON(http.StatusNotFound, result)
	case result.Status == scrape.StatusError:
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// scrapeDetails fetches a description ad hoc, for callers needing fresher
// content than the stored record. Extraction misses are a null
// description, not an error.
func (s *Server) scrapeDetails(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "url is required"})
		return
	}

	text, err := s.extractor.Extract(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"url": req.URL, "description": nil, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": req.URL, "description": text})
}

// importJob is the manual-import payload shape.
type importJob struct {
	ID              string   `json:"id"`
	Source          string   `json:"source"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	Requirements    string   `json:"requirements"`
	SalaryMin       *float64 `json:"salary_min"`
	SalaryMax       *float64 `json:"salary_max"`
	IsRemote        bool     `json:"is_remote"`
	VisaSponsorship bool     `json:"visa_sponsorship"`
}

// importJobs accepts {"jobs": [...]} or a bare array and upserts each
// record: existing rows keep their id and get provided fields refreshed.
func (s *Server) importJobs(c *gin.Context) {
	var payload struct {
		Jobs []importJob `json:"jobs"`
	}
	if err := c.ShouldBindBodyWithJSON(&payload); err != nil || payload.Jobs == nil {
		var bare []importJob
		if err := c.ShouldBindBodyWithJSON(&bare); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "payload must be {jobs: [...]} or an array of jobs",
			})
			return
		}
		payload.Jobs = bare
	}

	added, updated := 0, 0
	for _, j := range payload.Jobs {
		rec := importToRecord(j)
		created, err := s.store.Upsert(c.Request.Context(), rec)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "error", "error": err.Error(),
				"added": added, "updated": updated,
			})
			return
		}
		if created {
			added++
		} else {
			updated++
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "added": added, "updated": updated})
}

func importToRecord(j importJob) store.JobRecord {
	rec := store.JobRecord{
		ID:              j.ID,
		Source:          j.Source,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		URL:             j.URL,
		Description:     j.Description,
		Requirements:    j.Requirements,
		SalaryMin:       j.SalaryMin,
		SalaryMax:       j.SalaryMax,
		IsRemote:        j.IsRemote,
		VisaSponsorship: j.VisaSponsorship,
		FetchedAt:       time.Now().UTC(),
	}
	if rec.ID == "" {
		rec.ID = "job-" + uuid.NewString()[:8]
	}
	if rec.Source == "" {
		rec.Source = "manual"
	}
	if rec.Title == "" {
		rec.Title = ingest.UnknownTitle
	}
	if rec.Company == "" {
		rec.Company = ingest.UnknownCompany
	}
	if rec.Location == "" {
		rec.Location = ingest.DefaultLocation
	}
	return rec
}

// rankedJob pairs a stored record with its profile-match score.
type rankedJob struct {
	store.JobRecord
	Score float64 `json:"score"`
}

func (s *Server) rankJobs(c *gin.Context) {
	var req struct {
		Keywords []string `json:"keywords"`
		Limit    int      `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "keywords are required"})
		return
	}

	jobs, err := s.store.List(c.Request.Context(), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	ranked := make([]rankedJob, 0, len(jobs))
	for _, j := range jobs {
		ranked = append(ranked, rankedJob{JobRecord: j, Score: ingest.RankJob(j, req.Keywords)})
	}
	sort.SliceStable(ranked, func(i, k int) bool { return ranked[i].Score > ranked[k].Score })
	c.JSON(http.StatusOK, gin.H{"jobs": ranked})
}
