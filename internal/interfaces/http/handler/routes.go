package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/travelops/backoffice/internal/interfaces/http/middleware"
	"github.com/travelops/backoffice/internal/interfaces/http/router"
)

// Handlers bundles the handlers mounted under the API prefix
type Handlers struct {
	Payments     *PaymentHandler
	Payables     *PayableHandler
	Sources      *SourceHandler
	Originations *OriginationHandler
	Rates        *RateHandler
	Reports      *ReportHandler
}

// Routes builds the ledger route groups. mw runs before every handler in
// these groups (authentication, tenant resolution, idempotency).
func Routes(h Handlers, mw ...gin.HandlerFunc) []router.RouteRegistrar {
	payments := router.NewDomainGroup("payments", "/payments").Use(mw...)
	payments.GET("", h.Payments.List)
	payments.GET("/:id", h.Payments.Get)
	payments.POST("/:id/receipts", h.Payments.RecordReceipt)
	payments.POST("/:id/credit", h.Payments.SetCredit)

	receipts := router.NewDomainGroup("receipts", "/receipts").Use(mw...)
	receipts.POST("/:id/void", h.Payments.VoidReceipt)

	payables := router.NewDomainGroup("payables", "/payables").Use(mw...)
	payables.GET("", h.Payables.List)
	payables.GET("/:id", h.Payables.Get)
	payables.POST("/:id/payments", h.Payables.SubmitPayment)

	disbursements := router.NewDomainGroup("payable-payments", "/payable-payments").Use(mw...)
	disbursements.POST("/:id/approve", middleware.RequirePermission(middleware.PermPayableApprove), h.Payables.Approve)
	disbursements.POST("/:id/pay", middleware.RequirePermission(middleware.PermPayablePay), h.Payables.MarkPaid)

	tickets := router.NewDomainGroup("tickets", "/tickets").Use(mw...)
	tickets.POST("", h.Sources.RecordTicketSale)
	tickets.POST("/:id/cancel", h.Sources.CancelTicket)
	tickets.POST("/:id/adjustments", h.Sources.ApplyAdjustment)
	tickets.GET("/:id/adjustments", h.Sources.ListAdjustments)

	visas := router.NewDomainGroup("visas", "/visas").Use(mw...)
	visas.POST("", h.Sources.RecordVisaIssue)
	visas.POST("/:id/cancel", h.Sources.CancelVisa)

	originations := router.NewDomainGroup("originations", "/originations").Use(mw...)
	originations.POST("", h.Originations.Originate)

	rates := router.NewDomainGroup("rates", "/rates").Use(mw...)
	rates.GET("", h.Rates.List)
	rates.PUT("/:currency", middleware.RequirePermission(middleware.PermRateManage), h.Rates.Set)

	summary := router.NewDomainGroup("summary", "/summary").Use(mw...)
	summary.GET("", h.Reports.Summary)

	return []router.RouteRegistrar{
		payments, receipts, payables, disbursements, tickets, visas, originations, rates, summary,
	}
}
