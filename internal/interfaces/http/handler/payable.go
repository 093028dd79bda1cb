package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
)

// PayableHandler handles vendor payables and their disbursements
type PayableHandler struct {
	BaseHandler
	payables *ledgerapp.PayableService
	queries  *ledgerapp.QueryService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(payables *ledgerapp.PayableService, queries *ledgerapp.QueryService) *PayableHandler {
	return &PayableHandler{payables: payables, queries: queries}
}

// SubmitPayment requests a disbursement against a payable
// POST /payables/:id/payments
func (h *PayableHandler) SubmitPayment(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	payableID, ok := h.pathID(c, "id", "payable")
	if !ok {
		return
	}

	var req ledgerapp.SubmitPayablePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pp, err := h.payables.SubmitPayablePayment(c.Request.Context(), tenantID, userID, payableID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pp)
}

// Approve approves a pending disbursement
// POST /payable-payments/:id/approve
func (h *PayableHandler) Approve(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payable payment")
	if !ok {
		return
	}

	pp, err := h.payables.ApprovePayablePayment(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pp)
}

// MarkPaid records an approved disbursement as paid out
// POST /payable-payments/:id/pay
func (h *PayableHandler) MarkPaid(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payable payment")
	if !ok {
		return
	}

	pp, err := h.payables.MarkPayablePaymentPaid(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pp)
}

// List returns a page of payables
// GET /payables
func (h *PayableHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter ledgerapp.PayableListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.queries.ListPayables(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Get returns one payable with its disbursements
// GET /payables/:id
func (h *PayableHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	payableID, ok := h.pathID(c, "id", "payable")
	if !ok {
		return
	}

	payable, err := h.queries.GetPayable(c.Request.Context(), tenantID, payableID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payable)
}
