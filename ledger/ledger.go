package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"ticketledger/entity"
	"ticketledger/event"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, any) error { return nil }

// Ledger is the authoritative store of events, tickets and balances.
//
// Mutations hold the write lock while they validate, publish their notification and commit,
// so a failed publish leaves the store untouched and notifications go out in commit order.
//
// Ids restart at 1 for every Ledger, so each one carries a random ID that its notifications
// are stamped with.
type Ledger struct {
	mu        sync.RWMutex
	id        string
	publisher Publisher

	events   map[entity.EventID]entity.Event
	tickets  map[entity.TicketID]entity.Ticket
	owned    map[entity.Identity][]entity.TicketID
	balances map[entity.Identity]entity.Amount

	nextEventID  entity.EventID
	nextTicketID entity.TicketID
}

func New(publisher Publisher) *Ledger {
	if publisher == nil {
		publisher = discardPublisher{}
	}

	return &Ledger{
		id:           uuid.NewString(),
		publisher:    publisher,
		events:       make(map[entity.EventID]entity.Event),
		tickets:      make(map[entity.TicketID]entity.Ticket),
		owned:        make(map[entity.Identity][]entity.TicketID),
		balances:     make(map[entity.Identity]entity.Amount),
		nextEventID:  1,
		nextTicketID: 1,
	}
}

func (l *Ledger) ID() string {
	return l.id
}

func (l *Ledger) CreateEvent(ctx context.Context, caller entity.Identity, params entity.NewEvent) (entity.EventID, error) {
	if params.TicketsAvailable == 0 {
		return 0, &Error{Kind: ErrInvalidArgument, Reason: "tickets available must be greater than zero"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := entity.Event{
		ID:               l.nextEventID,
		Name:             params.Name,
		Date:             params.Date,
		Location:         params.Location,
		TicketPrice:      params.TicketPrice,
		TicketsAvailable: params.TicketsAvailable,
		Creator:          caller,
	}

	if err := l.publisher.Publish(ctx, event.NewEventCreated(l.id, e)); err != nil {
		return 0, fmt.Errorf("publishing event created: %w", err)
	}

	l.events[e.ID] = e
	l.nextEventID++

	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id": e.ID,
		"caller":   caller,
	}).Debug("Event created")

	return e.ID, nil
}

// PurchaseTicket mints a new ticket for eventID owned by caller. The whole payment, including
// any amount above the ticket price, is credited to the event creator.
func (l *Ledger) PurchaseTicket(ctx context.Context, caller entity.Identity, eventID entity.EventID, payment entity.Amount) (entity.TicketID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.events[eventID]
	if !ok {
		return 0, eventError(ErrNotFound, uint64(eventID), "event does not exist")
	}

	if payment.LessThan(e.TicketPrice) {
		return 0, eventError(ErrInsufficientPayment, uint64(eventID),
			fmt.Sprintf("payment %s is below ticket price %s", payment, e.TicketPrice))
	}

	if e.TicketsAvailable == 0 {
		return 0, eventError(ErrSoldOut, uint64(eventID), "no tickets available")
	}

	ticket := entity.Ticket{
		ID:        l.nextTicketID,
		EventID:   e.ID,
		Owner:     caller,
		Price:     e.TicketPrice,
		IsForSale: false,
	}

	if err := l.publisher.Publish(ctx, event.NewTicketPurchased(l.id, ticket, payment)); err != nil {
		return 0, fmt.Errorf("publishing ticket purchased: %w", err)
	}

	e.TicketsAvailable--
	l.events[e.ID] = e
	l.tickets[ticket.ID] = ticket
	l.owned[caller] = append(l.owned[caller], ticket.ID)
	l.balances[e.Creator] = l.balances[e.Creator].Add(payment)
	l.nextTicketID++

	log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":  e.ID,
		"ticket_id": ticket.ID,
		"caller":    caller,
	}).Debug("Ticket purchased")

	return ticket.ID, nil
}

// SetTicketForSale lists a ticket at price. Only the current owner may list it.
func (l *Ledger) SetTicketForSale(ctx context.Context, caller entity.Identity, ticketID entity.TicketID, price entity.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return ticketError(ErrNotFound, uint64(ticketID), "ticket does not exist")
	}

	if ticket.Owner != caller {
		return ticketError(ErrUnauthorized, uint64(ticketID), "caller is not the ticket owner")
	}

	ticket.IsForSale = true
	ticket.Price = price

	if err := l.publisher.Publish(ctx, event.NewTicketListedForSale(l.id, ticket)); err != nil {
		return fmt.Errorf("publishing ticket listed for sale: %w", err)
	}

	l.tickets[ticket.ID] = ticket

	log.FromContext(ctx).WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"caller":    caller,
	}).Debug("Ticket listed for sale")

	return nil
}

func (l *Ledger) EventDetails(eventID entity.EventID) (entity.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.events[eventID]
	if !ok {
		return entity.Event{}, eventError(ErrNotFound, uint64(eventID), "event does not exist")
	}

	return e, nil
}

func (l *Ledger) Events() []entity.Event {
	l.mu.RLock()
	events := make([]entity.Event, 0, len(l.events))
	for _, e := range l.events {
		events = append(events, e)
	}
	l.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		return events[i].ID < events[j].ID
	})

	return events
}

func (l *Ledger) TicketDetails(ticketID entity.TicketID) (entity.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return entity.Ticket{}, ticketError(ErrNotFound, uint64(ticketID), "ticket does not exist")
	}

	return ticket, nil
}

func (l *Ledger) OwnerOf(ticketID entity.TicketID) (entity.Identity, error) {
	ticket, err := l.TicketDetails(ticketID)
	if err != nil {
		return "", err
	}

	return ticket.Owner, nil
}

// TicketsByOwner returns the ids held by owner, earliest purchase first.
func (l *Ledger) TicketsByOwner(owner entity.Identity) []entity.TicketID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]entity.TicketID, len(l.owned[owner]))
	copy(ids, l.owned[owner])

	return ids
}

func (l *Ledger) VerifyOwnership(owner entity.Identity, ticketID entity.TicketID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]

	return ok && ticket.Owner == owner
}

func (l *Ledger) BalanceOf(identity entity.Identity) entity.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[identity]
}
