package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
)

// CacheHandler exposes the per-company stage cache.
type CacheHandler struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(c *cache.Cache, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{cache: c, logger: logger}
}

// Status handles GET /api/cache-status/:company.
func (h *CacheHandler) Status(c *gin.Context) {
	companyID := cache.CompanyID(c.Param("company"))
	entries, err := h.cache.Entries(companyID)
	if err != nil {
		h.logger.Error("listing cache failed", zap.String("company", companyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check cache status", "details": err.Error()})
		return
	}
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"exists": false, "message": "No cache found for this company"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":    true,
		"companyId": companyID,
		"files":     entries,
		"cachePath": h.cache.Location(companyID),
	})
}

// File handles GET /api/cache/:company/:file and returns the stage as
// stored. The file may be given with or without its .json suffix.
func (h *CacheHandler) File(c *gin.Context) {
	companyID := cache.CompanyID(c.Param("company"))
	stage := strings.TrimSuffix(c.Param("file"), ".json")

	data, err := h.cache.Raw(companyID, stage)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found in cache", "details": stage})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cache file", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Clear handles DELETE /api/clear-cache/:company. When the body names a
// different newCompanyName, that cache is cleared too.
func (h *CacheHandler) Clear(c *gin.Context) {
	company := c.Param("company")
	var req struct {
		NewCompanyName string `json:"newCompanyName"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body", "details": err.Error()})
			return
		}
	}

	ids := []string{cache.CompanyID(company)}
	if req.NewCompanyName != "" && req.NewCompanyName != company {
		ids = append(ids, cache.CompanyID(req.NewCompanyName))
	}
	for _, id := range ids {
		if err := h.cache.Clear(id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear cache", "details": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cache cleared successfully", "cleared": ids})
}
