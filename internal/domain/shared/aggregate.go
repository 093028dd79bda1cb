package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the contract every persisted aggregate satisfies
type AggregateRoot interface {
	GetID() uuid.UUID
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// TenantAggregateRoot carries identity, audit timestamps, the optimistic
// lock version and the owning tenant. The tenant is set once at creation
// and never reassigned.
type TenantAggregateRoot struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int

	domainEvents []DomainEvent
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	now := time.Now()
	return TenantAggregateRoot{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// GetID returns the aggregate ID
func (a *TenantAggregateRoot) GetID() uuid.UUID {
	return a.ID
}

// GetVersion returns the aggregate version for optimistic locking
func (a *TenantAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version and touches UpdatedAt
func (a *TenantAggregateRoot) IncrementVersion() {
	a.Version++
	a.UpdatedAt = time.Now()
}

// AddDomainEvent adds a domain event to be published
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// SetCreatedBy sets the creator user ID
func (a *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	a.CreatedBy = &userID
}
