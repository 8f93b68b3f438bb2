package message

import (
	"context"
	"fmt"
	"ticketledger/entity"
	"ticketledger/event"
)

type EventRepo interface {
	Add(ctx context.Context, ledgerID string, e entity.Event) error
}

type TicketRepo interface {
	Add(ctx context.Context, ledgerID string, ticket entity.Ticket) error
	MarkForSale(ctx context.Context, ledgerID string, ticketID entity.TicketID, price entity.Amount) error
}

func handleStoreEventInDB(repo EventRepo) func(context.Context, *event.EventCreated) error {
	return func(ctx context.Context, e *event.EventCreated) error {
		ev := entity.Event{
			ID:               e.EventID,
			Name:             e.Name,
			Date:             e.Date,
			Location:         e.Location,
			TicketPrice:      e.TicketPrice,
			TicketsAvailable: e.TicketsAvailable,
			Creator:          e.Creator,
		}
		if err := repo.Add(ctx, e.Header.LedgerID, ev); err != nil {
			return fmt.Errorf("storing event %d: %w", e.EventID, err)
		}

		return nil
	}
}

func handleStoreTicketInDB(repo TicketRepo) func(context.Context, *event.TicketPurchased) error {
	return func(ctx context.Context, e *event.TicketPurchased) error {
		t := entity.Ticket{
			ID:      e.TicketID,
			EventID: e.EventID,
			Owner:   e.Buyer,
			Price:   e.Price,
		}
		if err := repo.Add(ctx, e.Header.LedgerID, t); err != nil {
			return fmt.Errorf("storing ticket %d: %w", e.TicketID, err)
		}

		return nil
	}
}

func handleMarkTicketForSaleInDB(repo TicketRepo) func(context.Context, *event.TicketListedForSale) error {
	return func(ctx context.Context, e *event.TicketListedForSale) error {
		if err := repo.MarkForSale(ctx, e.Header.LedgerID, e.TicketID, e.Price); err != nil {
			return fmt.Errorf("marking ticket %d for sale: %w", e.TicketID, err)
		}

		return nil
	}
}
