package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
)

// RateHandler manages the tenant's exchange rate table
type RateHandler struct {
	BaseHandler
	rates *ledgerapp.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rates *ledgerapp.RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

// List returns every configured rate
// GET /rates
func (h *RateHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	rates, err := h.rates.ListRates(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// Set creates or replaces the rate of one currency
// PUT /rates/:currency
func (h *RateHandler) Set(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req ledgerapp.SetRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rate, err := h.rates.SetRate(c.Request.Context(), tenantID, userID, c.Param("currency"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
