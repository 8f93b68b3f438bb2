package db

import (
	"context"
	"fmt"
	"ticketledger/entity"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func CreateTicketsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS projected_tickets (
		ledger_id VARCHAR(36) NOT NULL,
		ticket_id BIGINT NOT NULL,
		event_id BIGINT NOT NULL,
		owner VARCHAR(255) NOT NULL,
		price NUMERIC(78, 0) NOT NULL,
		is_for_sale BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (ledger_id, ticket_id)
		);`)
	return err
}

type TicketRepo struct {
	db *sqlx.DB
}

func NewTicketRepo(db *sqlx.DB) TicketRepo {
	return TicketRepo{
		db: db,
	}
}

func (r TicketRepo) Add(ctx context.Context, ledgerID string, ticket entity.Ticket) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO projected_tickets
		(ledger_id, ticket_id, event_id, owner, price, is_for_sale)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING;`,
		ledgerID, uint64(ticket.ID), uint64(ticket.EventID), string(ticket.Owner), ticket.Price.Units(), ticket.IsForSale)
	if err != nil {
		return fmt.Errorf("inserting ticket: %w", err)
	}

	return nil
}

func (r TicketRepo) MarkForSale(ctx context.Context, ledgerID string, ticketID entity.TicketID, price entity.Amount) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projected_tickets SET is_for_sale = TRUE, price = $3
		WHERE ledger_id = $1 AND ticket_id = $2`, ledgerID, uint64(ticketID), price.Units())
	if err != nil {
		return fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ticket %d: %w", ticketID, ErrNotFound)
	}
	if n != 1 {
		return fmt.Errorf("unexpected exec result: %d rows affected", n)
	}

	return nil
}

func (r TicketRepo) ListByOwner(ctx context.Context, ledgerID string, owner entity.Identity) ([]entity.Ticket, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT ticket_id, event_id, owner, price, is_for_sale
		FROM projected_tickets WHERE ledger_id = $1 AND owner = $2 ORDER BY ticket_id`, ledgerID, string(owner))
	if err != nil {
		return nil, fmt.Errorf("querying db: %w", err)
	}
	defer rows.Close()

	tickets := []entity.Ticket{}
	for rows.Next() {
		var (
			t                  entity.Ticket
			id, eventID        uint64
			ownerCol, priceCol string
		)
		if err := rows.Scan(&id, &eventID, &ownerCol, &priceCol, &t.IsForSale); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		price, err := entity.AmountFromUnits(priceCol)
		if err != nil {
			return nil, fmt.Errorf("ticket %d: %w", id, err)
		}

		t.ID = entity.TicketID(id)
		t.EventID = entity.EventID(eventID)
		t.Owner = entity.Identity(ownerCol)
		t.Price = price
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return tickets, nil
}
