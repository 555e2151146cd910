package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/services"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// StrategySearcher finds archived strategies similar to a query.
type StrategySearcher interface {
	Search(ctx context.Context, query string, limit uint64) ([]services.SimilarStrategy, error)
}

// SearchHandler serves the similar-strategy archive.
type SearchHandler struct {
	index  StrategySearcher
	logger *zap.Logger
}

// NewSearchHandler creates a SearchHandler. A nil index disables search.
func NewSearchHandler(index StrategySearcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{index: index, logger: logger}
}

// Search handles GET /api/strategies/search?q=&limit=.
func (h *SearchHandler) Search(c *gin.Context) {
	if h.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrIndexDisabled.Error()})
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := h.index.Search(c.Request.Context(), query, uint64(limit))
	if err != nil {
		h.logger.Error("strategy search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Strategy search failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": hits})
}
