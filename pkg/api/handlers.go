package api

import (
	"context"
	"log/slog"
	"net/http"

	"news-pull/pkg/domain"

	"github.com/gin-gonic/gin"
)

// Fetcher triggers a full ingestion run.
type Fetcher interface {
	Fetch(ctx context.Context) error
}

// Querier reads stored article projections for the recommendation route.
type Querier interface {
	ByCategory(ctx context.Context, category string) ([]domain.Projection, error)
	ByTag(ctx context.Context, tag string) ([]domain.Projection, error)
	ByTagAndCategory(ctx context.Context, tag, category string) ([]domain.Projection, error)
}

// Handler exposes the pipeline trigger and the article query routes. The
// HTTP layer is a thin pass-through: per-feed and per-entry failures stay
// in the logs, callers only see run completion or fatal misconfiguration.
type Handler struct {
	pipeline Fetcher
	store    Querier
	logger   *slog.Logger
}

// NewHandler wires the handler's collaborators.
func NewHandler(pipeline Fetcher, store Querier, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
	}
}

// PullFeeds runs the ingestion pipeline synchronously.
func (h *Handler) PullFeeds(c *gin.Context) {
	if err := h.pipeline.Fetch(c.Request.Context()); err != nil {
		h.logger.Error("ingestion run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Finished pulling all data!!!"})
}

// GetRecommendation serves the three query shapes: category only, tag
// only, and tag conjoined with category. Meta keys echo the caller's
// choice.
func (h *Handler) GetRecommendation(c *gin.Context) {
	category := c.Query("categories")
	filterType := c.Query("filter_type")
	filterValue := c.Query("filter_value")
	ctx := c.Request.Context()

	switch {
	case filterType == "tags" && filterValue != "" && category == "":
		results, err := h.store.ByTag(ctx, filterValue)
		if err != nil {
			h.queryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Similar Articles": results, "Chosen Tag": filterValue})

	case filterType == "tags" && filterValue != "" && category != "":
		results, err := h.store.ByTagAndCategory(ctx, filterValue, category)
		if err != nil {
			h.queryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Similar Articles": results, "Chosen Tag": filterValue})

	default:
		results, err := h.store.ByCategory(ctx, category)
		if err != nil {
			h.queryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"Similar Articles": results, "Chosen Category": category})
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) queryError(c *gin.Context, err error) {
	h.logger.Error("article query failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
}
