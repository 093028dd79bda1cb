package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
)

// PaymentHandler handles receivable endpoints: receipts, credit and queries
type PaymentHandler struct {
	BaseHandler
	receipts *ledgerapp.ReceiptService
	queries  *ledgerapp.QueryService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(receipts *ledgerapp.ReceiptService, queries *ledgerapp.QueryService) *PaymentHandler {
	return &PaymentHandler{receipts: receipts, queries: queries}
}

// RecordReceipt records money received against a payment
// POST /payments/:id/receipts
func (h *PaymentHandler) RecordReceipt(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req ledgerapp.RecordReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.receipts.RecordReceipt(c.Request.Context(), tenantID, userID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// VoidReceipt voids a receipt and returns the recomputed payment
// POST /receipts/:id/void
func (h *PaymentHandler) VoidReceipt(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	receiptID, ok := h.pathID(c, "id", "receipt")
	if !ok {
		return
	}

	var req ledgerapp.VoidReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.receipts.VoidReceipt(c.Request.Context(), tenantID, userID, receiptID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// SetCredit marks an unpaid payment as extended credit
// POST /payments/:id/credit
func (h *PaymentHandler) SetCredit(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	var req ledgerapp.SetCreditRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.receipts.SetCredit(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// List returns a page of payments
// GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter ledgerapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.queries.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Get returns one payment with its receipts
// GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.queries.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
