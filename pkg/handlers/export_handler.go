package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
	"ai-proposal-api/pkg/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PDFRenderer turns a proposal into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, p models.Proposal) ([]byte, error)
}

// ExportHandler downloads cached proposals as PDF or workbook.
type ExportHandler struct {
	cache  *cache.Cache
	pdf    PDFRenderer
	logger *zap.Logger
}

// NewExportHandler creates an ExportHandler. A nil renderer disables PDF downloads.
func NewExportHandler(c *cache.Cache, pdf PDFRenderer, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{cache: c, pdf: pdf, logger: logger}
}

// PDF handles GET /api/proposal/:company/pdf.
func (h *ExportHandler) PDF(c *gin.Context) {
	if h.pdf == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "PDF rendering is not available"})
		return
	}
	p, ok := loadProposal(h.cache, c.Param("company"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found for the specified company"})
		return
	}

	data, err := h.pdf.Render(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("pdf rendering failed", zap.String("company", p.CompanyName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF", "details": err.Error()})
		return
	}
	attach(c, cache.CompanyID(p.CompanyName)+"-proposal.pdf")
	c.Data(http.StatusOK, "application/pdf", data)
}

// Workbook handles GET /api/proposal/:company/export.
func (h *ExportHandler) Workbook(c *gin.Context) {
	p, ok := loadProposal(h.cache, c.Param("company"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found for the specified company"})
		return
	}

	data, err := services.ExportXLSX(p)
	if err != nil {
		h.logger.Error("workbook export failed", zap.String("company", p.CompanyName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export workbook", "details": err.Error()})
		return
	}
	attach(c, cache.CompanyID(p.CompanyName)+"-strategies.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}

func attach(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
