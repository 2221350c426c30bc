package shared

// BaseAggregateRoot is embedded by documents whose changes are announced on
// the event bus. Events accumulate until the owning service drains them
// after a successful write.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
}

func NewBaseAggregateRoot(id string) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: BaseEntity{ID: id}}
}

// Record queues an event for publication
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PendingEvents returns the queued events without draining them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// PullDomainEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
