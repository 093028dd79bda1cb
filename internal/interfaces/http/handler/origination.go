package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
)

// OriginationHandler opens ledger entries for booking and shipment origins
type OriginationHandler struct {
	BaseHandler
	origination *ledgerapp.OriginationService
}

// NewOriginationHandler creates a new OriginationHandler
func NewOriginationHandler(origination *ledgerapp.OriginationService) *OriginationHandler {
	return &OriginationHandler{origination: origination}
}

// Originate opens the payment and payable for an origin. Calling it again
// for the same origin answers 200 with the entries created the first time.
// POST /originations
func (h *OriginationHandler) Originate(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req ledgerapp.OriginateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.origination.Originate(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !resp.Created {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}
