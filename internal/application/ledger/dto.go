package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

// RecordReceiptRequest is the payload of POST /payments/:id/receipts
type RecordReceiptRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" binding:"required,currency3"`
	Method          string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card cheque online"`
	CollectionPoint string          `json:"collection_point" binding:"omitempty,oneof=shipment delivery"`
	Reference       string          `json:"reference" binding:"max=100"`
	ReceivedAt      *time.Time      `json:"received_at"`
}

// VoidReceiptRequest is the payload of POST /receipts/:id/void
type VoidReceiptRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SetCreditRequest is the payload of POST /payments/:id/credit
type SetCreditRequest struct {
	ExpectedDate time.Time `json:"expected_date" binding:"required"`
}

// SubmitPayablePaymentRequest is the payload of POST /payables/:id/payments
type SubmitPayablePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card cheque online"`
	Reference   string          `json:"reference" binding:"max=100"`
	PaymentDate *time.Time      `json:"payment_date"`
}

// RecordTicketSaleRequest is the payload of POST /tickets
type RecordTicketSaleRequest struct {
	TicketNumber  string          `json:"ticket_number" binding:"required,min=1,max=50"`
	PassengerName string          `json:"passenger_name" binding:"max=200"`
	Airline       string          `json:"airline" binding:"max=100"`
	CustomerName  string          `json:"customer_name" binding:"max=200"`
	VendorName    string          `json:"vendor_name" binding:"max=200"`
	Currency      string          `json:"currency" binding:"required,currency3"`
	NetSales      decimal.Decimal `json:"net_sales"`
	NetCost       decimal.Decimal `json:"net_cost"`
	IssuedAt      *time.Time      `json:"issued_at"`
}

// RecordVisaIssueRequest is the payload of POST /visas
type RecordVisaIssueRequest struct {
	ApplicationNumber string          `json:"application_number" binding:"required,min=1,max=50"`
	ApplicantName     string          `json:"applicant_name" binding:"max=200"`
	Country           string          `json:"country" binding:"max=100"`
	VisaType          string          `json:"visa_type" binding:"max=50"`
	CustomerName      string          `json:"customer_name" binding:"max=200"`
	VendorName        string          `json:"vendor_name" binding:"max=200"`
	Currency          string          `json:"currency" binding:"required,currency3"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	Cost              decimal.Decimal `json:"cost"`
	IssuedAt          *time.Time      `json:"issued_at"`
}

// TicketAdjustmentRequest is the payload of POST /tickets/:id/adjustments
type TicketAdjustmentRequest struct {
	NewNetSales decimal.Decimal `json:"new_net_sales"`
	NewNetCost  decimal.Decimal `json:"new_net_cost"`
	Reason      string          `json:"reason" binding:"max=500"`
}

// OriginateRequest opens the payment and payable of a booking or shipment
type OriginateRequest struct {
	OriginKind   string          `json:"origin_kind" binding:"required,oneof=booking shipment"`
	OriginID     uuid.UUID       `json:"origin_id" binding:"required"`
	Reference    string          `json:"reference" binding:"max=100"`
	CustomerName string          `json:"customer_name" binding:"max=200"`
	VendorName   string          `json:"vendor_name" binding:"max=200"`
	Currency     string          `json:"currency" binding:"required,currency3"`
	SaleAmount   decimal.Decimal `json:"sale_amount"`
	CostAmount   decimal.Decimal `json:"cost_amount"`
}

// SetRateRequest is the payload of PUT /rates/:currency
type SetRateRequest struct {
	RateToUsd decimal.Decimal `json:"rate_to_usd"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	Search          string `form:"search"`
	Status          string `form:"status" binding:"omitempty,oneof=pending partial paid credit refund"`
	OriginKind      string `form:"origin_kind" binding:"omitempty,oneof=none ticket visa booking shipment"`
	IncludeCanceled bool   `form:"include_canceled"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

// PayableListFilter defines filtering options for payable list queries
type PayableListFilter struct {
	Search          string `form:"search"`
	OriginKind      string `form:"origin_kind" binding:"omitempty,oneof=none ticket visa booking shipment"`
	OnlyOutstanding bool   `form:"only_outstanding"`
	IncludeCanceled bool   `form:"include_canceled"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	RateToBase      decimal.Decimal `json:"rate_to_base"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	Method          string          `json:"method,omitempty"`
	CollectionPoint string          `json:"collection_point,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	ReceivedBy      uuid.UUID       `json:"received_by"`
	ReceivedAt      time.Time       `json:"received_at"`
	Voided          bool            `json:"voided"`
	VoidedAt        *time.Time      `json:"voided_at,omitempty"`
	VoidReason      string          `json:"void_reason,omitempty"`
}

// PaymentResponse represents a customer payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID         `json:"id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	OriginKind    string            `json:"origin_kind"`
	OriginID      *uuid.UUID        `json:"origin_id,omitempty"`
	CustomerName  string            `json:"customer_name"`
	Description   string            `json:"description,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	RateToBase    decimal.Decimal   `json:"rate_to_base"`
	ExpectedTotal decimal.Decimal   `json:"expected_total"`
	ReceivedTotal decimal.Decimal   `json:"received_total"`
	Balance       decimal.Decimal   `json:"balance"`
	Status        string            `json:"status"`
	ExpectedDate  *time.Time        `json:"expected_date,omitempty"`
	CanceledAt    *time.Time        `json:"canceled_at,omitempty"`
	Receipts      []ReceiptResponse `json:"receipts"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Version       int               `json:"version"`
}

// PayablePaymentResponse represents a disbursement request in API responses
type PayablePaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	PayableID   uuid.UUID       `json:"payable_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method,omitempty"`
	Status      string          `json:"status"`
	Reference   string          `json:"reference,omitempty"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	RequestedBy uuid.UUID       `json:"requested_by"`
	RequestedAt time.Time       `json:"requested_at"`
	ApprovedBy  *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	PaidBy      *uuid.UUID      `json:"paid_by,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// PayableResponse represents a vendor payable in API responses
type PayableResponse struct {
	ID                     uuid.UUID                `json:"id"`
	TenantID               uuid.UUID                `json:"tenant_id"`
	OriginKind             string                   `json:"origin_kind"`
	OriginID               *uuid.UUID               `json:"origin_id,omitempty"`
	VendorName             string                   `json:"vendor_name"`
	Amount                 decimal.Decimal          `json:"amount"`
	Balance                decimal.Decimal          `json:"balance"`
	PendingOrApprovedTotal decimal.Decimal          `json:"pending_or_approved_total"`
	Available              decimal.Decimal          `json:"available"`
	Currency               string                   `json:"currency"`
	RateToBase             decimal.Decimal          `json:"rate_to_base"`
	BaseBalance            decimal.Decimal          `json:"base_balance"`
	Status                 string                   `json:"status"`
	CanceledAt             *time.Time               `json:"canceled_at,omitempty"`
	Payments               []PayablePaymentResponse `json:"payments"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
	Version                int                      `json:"version"`
}

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID            uuid.UUID       `json:"id"`
	TicketNumber  string          `json:"ticket_number"`
	PassengerName string          `json:"passenger_name,omitempty"`
	Airline       string          `json:"airline,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	VendorName    string          `json:"vendor_name,omitempty"`
	Currency      string          `json:"currency"`
	NetSales      decimal.Decimal `json:"net_sales"`
	NetCost       decimal.Decimal `json:"net_cost"`
	Profit        decimal.Decimal `json:"profit"`
	IssuedAt      time.Time       `json:"issued_at"`
	CanceledAt    *time.Time      `json:"canceled_at,omitempty"`
	Version       int             `json:"version"`
}

// VisaResponse represents a visa in API responses
type VisaResponse struct {
	ID                uuid.UUID       `json:"id"`
	ApplicationNumber string          `json:"application_number"`
	ApplicantName     string          `json:"applicant_name,omitempty"`
	Country           string          `json:"country,omitempty"`
	VisaType          string          `json:"visa_type,omitempty"`
	CustomerName      string          `json:"customer_name,omitempty"`
	VendorName        string          `json:"vendor_name,omitempty"`
	Currency          string          `json:"currency"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	Cost              decimal.Decimal `json:"cost"`
	Profit            decimal.Decimal `json:"profit"`
	IssuedAt          time.Time       `json:"issued_at"`
	CanceledAt        *time.Time      `json:"canceled_at,omitempty"`
	Version           int             `json:"version"`
}

// OriginationResponse is returned when a source opens its ledger entries.
// Payment and Payable are nil when the corresponding amount was zero.
type OriginationResponse struct {
	Ticket  *TicketResponse  `json:"ticket,omitempty"`
	Visa    *VisaResponse    `json:"visa,omitempty"`
	Payment *PaymentResponse `json:"payment,omitempty"`
	Payable *PayableResponse `json:"payable,omitempty"`
	Created bool             `json:"created"`
}

// CancelSourceResponse reports the result of a cancellation cascade
type CancelSourceResponse struct {
	SourceKind       string    `json:"source_kind"`
	SourceID         uuid.UUID `json:"source_id"`
	CanceledAt       time.Time `json:"canceled_at"`
	PaymentsCanceled int       `json:"payments_canceled"`
	PayablesCanceled int       `json:"payables_canceled"`
}

// AdjustmentResponse represents a ticket adjustment audit record
type AdjustmentResponse struct {
	ID               uuid.UUID       `json:"id"`
	TicketID         uuid.UUID       `json:"ticket_id"`
	PreviousNetSales decimal.Decimal `json:"previous_net_sales"`
	NewNetSales      decimal.Decimal `json:"new_net_sales"`
	PreviousNetCost  decimal.Decimal `json:"previous_net_cost"`
	NewNetCost       decimal.Decimal `json:"new_net_cost"`
	PreviousProfit   decimal.Decimal `json:"previous_profit"`
	NewProfit        decimal.Decimal `json:"new_profit"`
	Reason           string          `json:"reason,omitempty"`
	AdjustedBy       *uuid.UUID      `json:"adjusted_by,omitempty"`
	AdjustedAt       time.Time       `json:"adjusted_at"`
}

// RateResponse represents one row of the rate table
type RateResponse struct {
	Currency  string          `json:"currency"`
	RateToUsd decimal.Decimal `json:"rate_to_usd"`
	Revision  int64           `json:"revision"`
	UpdatedBy *uuid.UUID      `json:"updated_by,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SummaryResponse holds the base-currency dashboard totals of a tenant
type SummaryResponse struct {
	BaseCurrency       string          `json:"base_currency"`
	Receivable         decimal.Decimal `json:"receivable"`
	Received           decimal.Decimal `json:"received"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	Refundable         decimal.Decimal `json:"refundable"`
	PayableOutstanding decimal.Decimal `json:"payable_outstanding"`
	OpenPayments       int             `json:"open_payments"`
	OpenPayables       int             `json:"open_payables"`
	PaymentsByStatus   map[string]int  `json:"payments_by_status"`
	PayablesByStatus   map[string]int  `json:"payables_by_status"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

func toReceiptResponse(r *ledger.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:              r.ID,
		PaymentID:       r.PaymentID,
		Amount:          r.Amount,
		Currency:        string(r.Currency),
		RateToBase:      r.RateToBase,
		BaseAmount:      r.BaseAmount(),
		Method:          string(r.Method),
		CollectionPoint: string(r.CollectionPoint),
		Reference:       r.Reference,
		ReceivedBy:      r.ReceivedBy,
		ReceivedAt:      r.ReceivedAt,
		Voided:          r.IsVoided(),
		VoidedAt:        r.VoidedAt,
		VoidReason:      r.VoidReason,
	}
}

func toPaymentResponse(p *ledger.Payment) *PaymentResponse {
	receipts := make([]ReceiptResponse, len(p.Receipts))
	for i := range p.Receipts {
		receipts[i] = toReceiptResponse(&p.Receipts[i])
	}
	return &PaymentResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		OriginKind:    string(p.Origin.Kind()),
		OriginID:      p.Origin.IDPtr(),
		CustomerName:  p.CustomerName,
		Description:   p.Description,
		Amount:        p.Amount,
		Currency:      string(p.Currency),
		RateToBase:    p.RateToBase,
		ExpectedTotal: p.ExpectedTotal(),
		ReceivedTotal: p.ReceivedTotal(),
		Balance:       p.Balance(),
		Status:        string(p.Status),
		ExpectedDate:  p.ExpectedDate,
		CanceledAt:    p.CanceledAt,
		Receipts:      receipts,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

func toPayablePaymentResponse(pp *ledger.PayablePayment) PayablePaymentResponse {
	return PayablePaymentResponse{
		ID:          pp.ID,
		PayableID:   pp.PayableID,
		Amount:      pp.Amount,
		Method:      string(pp.Method),
		Status:      string(pp.Status),
		Reference:   pp.Reference,
		PaymentDate: pp.PaymentDate,
		RequestedBy: pp.RequestedBy,
		RequestedAt: pp.RequestedAt,
		ApprovedBy:  pp.ApprovedBy,
		ApprovedAt:  pp.ApprovedAt,
		PaidBy:      pp.PaidBy,
		PaidAt:      pp.PaidAt,
	}
}

func toPayableResponse(p *ledger.Payable) *PayableResponse {
	payments := make([]PayablePaymentResponse, len(p.Payments))
	for i := range p.Payments {
		payments[i] = toPayablePaymentResponse(&p.Payments[i])
	}
	return &PayableResponse{
		ID:                     p.ID,
		TenantID:               p.TenantID,
		OriginKind:             string(p.Origin.Kind()),
		OriginID:               p.Origin.IDPtr(),
		VendorName:             p.VendorName,
		Amount:                 p.Amount,
		Balance:                p.Balance,
		PendingOrApprovedTotal: p.PendingOrApprovedTotal(),
		Available:              p.Available(),
		Currency:               string(p.Currency),
		RateToBase:             p.RateToBase,
		BaseBalance:            p.BaseBalance(),
		Status:                 string(p.Status()),
		CanceledAt:             p.CanceledAt,
		Payments:               payments,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
		Version:                p.Version,
	}
}

func toTicketResponse(t *ledger.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.TicketNumber,
		PassengerName: t.PassengerName,
		Airline:       t.Airline,
		CustomerName:  t.CustomerName,
		VendorName:    t.VendorName,
		Currency:      string(t.Currency),
		NetSales:      t.NetSales,
		NetCost:       t.NetCost,
		Profit:        t.Profit(),
		IssuedAt:      t.IssuedAt,
		CanceledAt:    t.CanceledAt,
		Version:       t.Version,
	}
}

func toVisaResponse(v *ledger.Visa) *VisaResponse {
	return &VisaResponse{
		ID:                v.ID,
		ApplicationNumber: v.ApplicationNumber,
		ApplicantName:     v.ApplicantName,
		Country:           v.Country,
		VisaType:          v.VisaType,
		CustomerName:      v.CustomerName,
		VendorName:        v.VendorName,
		Currency:          string(v.Currency),
		SalePrice:         v.SalePrice,
		Cost:              v.Cost,
		Profit:            v.Profit(),
		IssuedAt:          v.IssuedAt,
		CanceledAt:        v.CanceledAt,
		Version:           v.Version,
	}
}

func toAdjustmentResponse(a *ledger.TicketAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:               a.ID,
		TicketID:         a.TicketID,
		PreviousNetSales: a.PreviousNetSales,
		NewNetSales:      a.NewNetSales,
		PreviousNetCost:  a.PreviousNetCost,
		NewNetCost:       a.NewNetCost,
		PreviousProfit:   a.PreviousProfit(),
		NewProfit:        a.NewProfit(),
		Reason:           a.Reason,
		AdjustedBy:       a.AdjustedBy,
		AdjustedAt:       a.AdjustedAt,
	}
}

func toRateResponse(r *ledger.CurrencyRate) RateResponse {
	return RateResponse{
		Currency:  string(r.Currency),
		RateToUsd: r.RateToUsd,
		Revision:  r.Revision,
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
	}
}

// TicketAdjustmentResponse is returned by POST /tickets/:id/adjustments
type TicketAdjustmentResponse struct {
	Adjustment AdjustmentResponse `json:"adjustment"`
	Ticket     *TicketResponse    `json:"ticket"`
	Payment    *PaymentResponse   `json:"payment,omitempty"`
	Payable    *PayableResponse   `json:"payable,omitempty"`
}
