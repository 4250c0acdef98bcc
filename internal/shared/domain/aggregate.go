package domain

// AggregateRoot is the consistency boundary for a cluster of entities.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot provides event recording and optimistic versioning.
type BaseAggregateRoot struct {
	BaseEntity
	events  []DomainEvent
	version int
}

// NewBaseAggregateRoot creates an aggregate root at version zero.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// RehydrateBaseAggregateRoot restores an aggregate from persisted state.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns the uncommitted events recorded on the aggregate.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent { return a.events }

// ClearDomainEvents drops all uncommitted events.
func (a *BaseAggregateRoot) ClearDomainEvents() { a.events = nil }

// Record appends a domain event for later dispatch through the outbox.
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.events = append(a.events, event)
}

// Version returns the aggregate version used for optimistic locking.
func (a *BaseAggregateRoot) Version() int { return a.version }

// IncrementVersion advances the aggregate version.
func (a *BaseAggregateRoot) IncrementVersion() { a.version++ }

// SetVersion sets the version when rehydrating from storage.
func (a *BaseAggregateRoot) SetVersion(version int) { a.version = version }
