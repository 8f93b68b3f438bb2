package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ticketledger/entity"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func CreateEventsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS projected_events (
		ledger_id VARCHAR(36) NOT NULL,
		event_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		location TEXT NOT NULL,
		ticket_price NUMERIC(78, 0) NOT NULL,
		tickets_total BIGINT NOT NULL,
		creator VARCHAR(255) NOT NULL,
		PRIMARY KEY (ledger_id, event_id)
	);`)
	return err
}

type eventRow struct {
	EventID      uint64 `db:"event_id"`
	Name         string `db:"name"`
	Date         string `db:"date"`
	Location     string `db:"location"`
	TicketPrice  string `db:"ticket_price"`
	TicketsTotal uint64 `db:"tickets_total"`
	Creator      string `db:"creator"`
}

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) EventRepo {
	return EventRepo{
		db: db,
	}
}

// Add stores the event as it was at creation. Adding the same event twice is a no-op.
func (r EventRepo) Add(ctx context.Context, ledgerID string, e entity.Event) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO projected_events
		(ledger_id, event_id, name, date, location, ticket_price, tickets_total, creator)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT DO NOTHING;`,
		ledgerID, uint64(e.ID), e.Name, e.Date, e.Location, e.TicketPrice.Units(), e.TicketsAvailable, string(e.Creator))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// Get returns the event with TicketsAvailable set to its creation-time capacity.
func (r EventRepo) Get(ctx context.Context, ledgerID string, eventID entity.EventID) (entity.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT event_id, name, date, location, ticket_price, tickets_total, creator
		FROM projected_events WHERE ledger_id = $1 AND event_id = $2`, ledgerID, uint64(eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("querying event: %w", err)
	}

	price, err := entity.AmountFromUnits(row.TicketPrice)
	if err != nil {
		return entity.Event{}, fmt.Errorf("event %d: %w", eventID, err)
	}

	return entity.Event{
		ID:               entity.EventID(row.EventID),
		Name:             row.Name,
		Date:             row.Date,
		Location:         row.Location,
		TicketPrice:      price,
		TicketsAvailable: row.TicketsTotal,
		Creator:          entity.Identity(row.Creator),
	}, nil
}
