// Package api exposes the read endpoints and the dispatch endpoints over
// gin. Handlers stay thin: validation and response shaping here, everything
// else behind the ports.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Deps wires the repositories and the queue into the HTTP surface.
type Deps struct {
	Items      ports.ItemRepository
	Jobs       ports.JobRepository
	Dispatcher ports.Dispatcher
	Logger     *slog.Logger
}

// Server is the HTTP facade over the pipeline.
type Server struct {
	items      ports.ItemRepository
	jobs       ports.JobRepository
	dispatcher ports.Dispatcher
	logger     *slog.Logger
	engine     *gin.Engine
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	s := &Server{
		items:      deps.Items,
		jobs:       deps.Jobs,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/articles/:id", s.getArticle)
		v1.POST("/articles/:id/enrich", s.requeueEnrich)
		v1.POST("/scrape", s.scrape)
		v1.POST("/jobs", s.createJob)
		v1.GET("/jobs", s.listJobs)
		v1.DELETE("/jobs/:id", s.deleteJob)
	}

	s.engine = engine
	return s
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// articleResponse is the list/detail shape. CleanText is only populated on
// the detail endpoint.
type articleResponse struct {
	ID            int64                 `json:"id"`
	URL           string                `json:"url"`
	SourceID      int64                 `json:"source_id"`
	Title         string                `json:"title,omitempty"`
	Author        string                `json:"author,omitempty"`
	PublishedDate string                `json:"published_date,omitempty"`
	MainImage     string                `json:"main_image,omitempty"`
	CleanText     string                `json:"clean_text,omitempty"`
	Summary       string                `json:"summary,omitempty"`
	Tags          []string              `json:"tags,omitempty"`
	Category      string                `json:"category,omitempty"`
	Urgency       int                   `json:"urgency,omitempty"`
	Status        string                `json:"status"`
	ErrorDetail   string                `json:"error_detail,omitempty"`
	Metadata      domain.ExtractionMeta `json:"metadata"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toArticleResponse(item domain.ScrapedItem, withText bool) articleResponse {
	resp := articleResponse{
		ID:            item.ID,
		URL:           item.URL,
		SourceID:      item.SourceID,
		Title:         item.Title,
		Author:        item.Author,
		PublishedDate: item.PublishedDate,
		MainImage:     item.MainImage,
		Summary:       item.Summary,
		Tags:          item.Tags,
		Category:      item.Category,
		Urgency:       item.Urgency,
		Status:        string(item.Status),
		ErrorDetail:   item.ErrorDetail,
		Metadata:      item.Metadata,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if withText {
		resp.CleanText = item.CleanText
	}
	return resp
}

func (s *Server) listArticles(c *gin.Context) {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", defaultListLimit)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.items.List(c.Request.Context(), skip, limit)
	if err != nil {
		s.logger.Error("list articles failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}

	resp := make([]articleResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toArticleResponse(item, false))
	}
	c.JSON(http.StatusOK, gin.H{"articles": resp, "skip": skip, "limit": limit})
}

func (s *Server) getArticle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := s.items.GetByID(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("get article failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(*item, true))
}

type scrapeRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// scrape dispatches an ad-hoc ingest for a single URL. No job is involved,
// so the chain carries no scheduling feedback and stops after extraction.
func (s *Server) scrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required and must be valid"})
		return
	}

	task := ports.IngestTask{
		URL:           req.URL,
		CorrelationID: uuid.NewString(),
		Chain:         false,
	}
	if err := s.dispatcher.EnqueueIngest(c.Request.Context(), task); err != nil {
		s.logger.Error("dispatch scrape failed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue scrape"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"correlation_id": task.CorrelationID})
}

// requeueEnrich re-dispatches enrichment for an item, for example one stuck
// in failed after an inference outage.
func (s *Server) requeueEnrich(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := s.items.GetByID(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("load article failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	task := ports.EnrichTask{ItemID: id, CorrelationID: uuid.NewString()}
	if err := s.dispatcher.EnqueueEnrich(c.Request.Context(), task); err != nil {
		s.logger.Error("dispatch enrich failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue enrichment"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"correlation_id": task.CorrelationID})
}

type createJobRequest struct {
	Name            string `json:"name" binding:"required"`
	URL             string `json:"url" binding:"required,url"`
	IntervalSeconds int    `json:"interval_seconds"`
	IsActive        *bool  `json:"is_active"`
}

type jobResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	IntervalSeconds int        `json:"interval_seconds"`
	IsActive        bool       `json:"is_active"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toJobResponse(job domain.ScheduledJob) jobResponse {
	return jobResponse{
		ID:              job.ID,
		Name:            job.Name,
		URL:             job.URL,
		IntervalSeconds: job.IntervalSeconds,
		IsActive:        job.IsActive,
		LastTriggeredAt: job.LastTriggeredAt,
		CreatedAt:       job.CreatedAt,
	}
}

func (s *Server) createJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and a valid url are required"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	id, err := s.jobs.Create(c.Request.Context(), domain.ScheduledJob{
		Name:            req.Name,
		URL:             req.URL,
		IntervalSeconds: req.IntervalSeconds,
		IsActive:        active,
	})
	if err != nil {
		s.logger.Error("create job failed", "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), id)
	if err != nil || job == nil {
		s.logger.Error("read back job failed", "id", id, "error", err)
		c.JSON(http.StatusCreated, gin.H{"id": id})
		return
	}

	c.JSON(http.StatusCreated, toJobResponse(*job))
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.jobs.List(c.Request.Context())
	if err != nil {
		s.logger.Error("list jobs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": resp})
}

func (s *Server) deleteJob(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.jobs.Delete(c.Request.Context(), id); err != nil {
		s.logger.Error("delete job failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}

	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
