package ledger

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodCheque       PaymentMethod = "cheque"
	MethodOnline       PaymentMethod = "online"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodCheque, MethodOnline:
		return true
	}
	return false
}

// CollectionPoint tags where a cargo receipt was collected
type CollectionPoint string

const (
	CollectionNone     CollectionPoint = ""
	CollectionShipment CollectionPoint = "shipment"
	CollectionDelivery CollectionPoint = "delivery"
)

// IsValid checks if the collection point is known
func (p CollectionPoint) IsValid() bool {
	switch p {
	case CollectionNone, CollectionShipment, CollectionDelivery:
		return true
	}
	return false
}
