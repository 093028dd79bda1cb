package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
	"github.com/travelops/backoffice/internal/domain/ledger"
)

// SourceHandler handles ticket and visa sources: sale, cancel, adjustment
type SourceHandler struct {
	BaseHandler
	sources *ledgerapp.SourceService
}

// NewSourceHandler creates a new SourceHandler
func NewSourceHandler(sources *ledgerapp.SourceService) *SourceHandler {
	return &SourceHandler{sources: sources}
}

// RecordTicketSale records an issued ticket with its payment and payable
// POST /tickets
func (h *SourceHandler) RecordTicketSale(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req ledgerapp.RecordTicketSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sources.RecordTicketSale(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordVisaIssue records an issued visa with its payment and payable
// POST /visas
func (h *SourceHandler) RecordVisaIssue(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req ledgerapp.RecordVisaIssueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sources.RecordVisaIssue(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CancelTicket cancels a ticket and every entry it originated
// POST /tickets/:id/cancel
func (h *SourceHandler) CancelTicket(c *gin.Context) {
	h.cancel(c, ledger.OriginTicket, "ticket")
}

// CancelVisa cancels a visa and every entry it originated
// POST /visas/:id/cancel
func (h *SourceHandler) CancelVisa(c *gin.Context) {
	h.cancel(c, ledger.OriginVisa, "visa")
}

func (h *SourceHandler) cancel(c *gin.Context, kind ledger.OriginKind, label string) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", label)
	if !ok {
		return
	}

	resp, err := h.sources.CancelSource(c.Request.Context(), tenantID, kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyAdjustment revises a ticket's net sales and cost
// POST /tickets/:id/adjustments
func (h *SourceHandler) ApplyAdjustment(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	ticketID, ok := h.pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req ledgerapp.TicketAdjustmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sources.ApplyTicketAdjustment(c.Request.Context(), tenantID, userID, ticketID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListAdjustments returns a ticket's adjustment history
// GET /tickets/:id/adjustments
func (h *SourceHandler) ListAdjustments(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	ticketID, ok := h.pathID(c, "id", "ticket")
	if !ok {
		return
	}

	history, err := h.sources.ListAdjustments(c.Request.Context(), tenantID, ticketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
