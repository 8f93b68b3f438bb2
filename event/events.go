package event

import (
	"ticketledger/entity"
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// Header identifies a notification and the ledger that published it.
type Header struct {
	ID          string    `json:"id"`
	LedgerID    string    `json:"ledger_id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewHeader(ledgerID string) Header {
	return Header{
		ID:          watermill.NewUUID(),
		LedgerID:    ledgerID,
		PublishedAt: time.Now().UTC(),
	}
}

type EventCreated struct {
	Header           Header          `json:"header"`
	EventID          entity.EventID  `json:"event_id"`
	Name             string          `json:"name"`
	Date             string          `json:"date"`
	Location         string          `json:"location"`
	TicketPrice      entity.Amount   `json:"ticket_price"`
	TicketsAvailable uint64          `json:"tickets_available"`
	Creator          entity.Identity `json:"creator"`
}

func NewEventCreated(ledgerID string, e entity.Event) EventCreated {
	return EventCreated{
		Header:           NewHeader(ledgerID),
		EventID:          e.ID,
		Name:             e.Name,
		Date:             e.Date,
		Location:         e.Location,
		TicketPrice:      e.TicketPrice,
		TicketsAvailable: e.TicketsAvailable,
		Creator:          e.Creator,
	}
}

type TicketPurchased struct {
	Header   Header          `json:"header"`
	EventID  entity.EventID  `json:"event_id"`
	TicketID entity.TicketID `json:"ticket_id"`
	Buyer    entity.Identity `json:"buyer"`
	Price    entity.Amount   `json:"price"`
	Payment  entity.Amount   `json:"payment"`
}

func NewTicketPurchased(ledgerID string, ticket entity.Ticket, payment entity.Amount) TicketPurchased {
	return TicketPurchased{
		Header:   NewHeader(ledgerID),
		EventID:  ticket.EventID,
		TicketID: ticket.ID,
		Buyer:    ticket.Owner,
		Price:    ticket.Price,
		Payment:  payment,
	}
}

type TicketListedForSale struct {
	Header   Header          `json:"header"`
	TicketID entity.TicketID `json:"ticket_id"`
	EventID  entity.EventID  `json:"event_id"`
	Owner    entity.Identity `json:"owner"`
	Price    entity.Amount   `json:"price"`
}

func NewTicketListedForSale(ledgerID string, ticket entity.Ticket) TicketListedForSale {
	return TicketListedForSale{
		Header:   NewHeader(ledgerID),
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		Owner:    ticket.Owner,
		Price:    ticket.Price,
	}
}
