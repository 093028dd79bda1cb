package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
)

// ReportHandler serves the receivable and payable summary
type ReportHandler struct {
	BaseHandler
	queries *ledgerapp.QueryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(queries *ledgerapp.QueryService) *ReportHandler {
	return &ReportHandler{queries: queries}
}

// Summary returns the tenant's outstanding totals in USD
// GET /summary
func (h *ReportHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	summary, err := h.queries.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
