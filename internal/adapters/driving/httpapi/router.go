// Package httpapi exposes story generation over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8000"

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-ID"

// StoryRequest is the body of POST /generate-story.
type StoryRequest struct {
	Prompt     string   `json:"prompt"`
	CreateJira bool     `json:"create_jira,omitempty"`
	ProjectKey string   `json:"project_key,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

// StoryResponse is the body returned by POST /generate-story.
type StoryResponse struct {
	Story string `json:"story"`
}

type handler struct {
	story     driving.StoryService
	retrieval driving.RetrievalService
}

// NewRouter builds the gin engine. retrieval may be nil, which disables /stats.
func NewRouter(story driving.StoryService, retrieval driving.RetrievalService) *gin.Engine {
	if gin.Mode() == gin.DebugMode && !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handler{story: story, retrieval: retrieval}

	r := gin.New()
	r.Use(requestID(), requestLogger(), gin.Recovery())

	r.GET("/healthz", h.health)
	r.POST("/generate-story", h.generateStory)
	if retrieval != nil {
		r.GET("/stats", h.stats)
	}
	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) generateStory(c *gin.Context) {
	var req StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a prompt"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	story, err := h.story.Generate(c.Request.Context(), domain.StoryRequest{
		Prompt:      req.Prompt,
		CreateIssue: req.CreateJira,
		ProjectKey:  req.ProjectKey,
		Labels:      req.Labels,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.Error("generate-story: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StoryResponse{Story: story.Text})
}

func (h *handler) stats(c *gin.Context) {
	coll, err := h.retrieval.Stats(c.Request.Context())
	if errors.Is(err, domain.ErrCollectionNotFound) {
		c.JSON(http.StatusOK, gin.H{"name": domain.DefaultCollection, "count": 0})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":       coll.Name,
		"model":      coll.Model,
		"dimensions": coll.Dimensions,
		"count":      coll.Count,
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("[HTTP] %s %s %d %v %s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}
