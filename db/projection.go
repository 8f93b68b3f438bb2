package db

import (
	"context"
	"ticketledger/entity"

	"github.com/jmoiron/sqlx"
)

// Projection reads the rows one ledger has projected.
type Projection struct {
	ledgerID string
	events   EventRepo
	tickets  TicketRepo
}

func NewProjection(db *sqlx.DB, ledgerID string) Projection {
	return Projection{
		ledgerID: ledgerID,
		events:   NewEventRepo(db),
		tickets:  NewTicketRepo(db),
	}
}

func (p Projection) Event(ctx context.Context, eventID entity.EventID) (entity.Event, error) {
	return p.events.Get(ctx, p.ledgerID, eventID)
}

func (p Projection) TicketsByOwner(ctx context.Context, owner entity.Identity) ([]entity.Ticket, error) {
	return p.tickets.ListByOwner(ctx, p.ledgerID, owner)
}
