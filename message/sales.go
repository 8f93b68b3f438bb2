package message

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"ticketledger/entity"
	"ticketledger/event"
	"time"

	"github.com/shopspring/decimal"
)

type EventSales struct {
	EventID     entity.EventID  `json:"event_id"`
	Name        string          `json:"name"`
	Capacity    uint64          `json:"capacity"`
	TicketsSold uint64          `json:"tickets_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	LastSaleAt  time.Time       `json:"last_sale_at"`
}

// SalesReadModel is an in-memory projection of ticket sales per event of one ledger.
// Notifications from other ledgers, such as a previous run still draining from the outbox,
// are ignored. Revenue counts the whole payment credited to the creator, surplus included.
type SalesReadModel struct {
	ledgerID  string
	sales     map[entity.EventID]EventSales
	counted   map[entity.TicketID]struct{}
	salesLock *sync.RWMutex
}

func NewSalesReadModel(ledgerID string) *SalesReadModel {
	return &SalesReadModel{
		ledgerID:  ledgerID,
		sales:     make(map[entity.EventID]EventSales),
		counted:   make(map[entity.TicketID]struct{}),
		salesLock: &sync.RWMutex{},
	}
}

func (s *SalesReadModel) AllSales() []EventSales {
	s.salesLock.RLock()
	sales := make([]EventSales, 0, len(s.sales))
	for _, es := range s.sales {
		sales = append(sales, es)
	}
	s.salesLock.RUnlock()

	sort.Slice(sales, func(i, j int) bool {
		return sales[i].EventID < sales[j].EventID
	})

	return sales
}

func (s *SalesReadModel) SalesByEventID(id entity.EventID) (EventSales, bool) {
	s.salesLock.RLock()
	es, exists := s.sales[id]
	s.salesLock.RUnlock()
	return es, exists
}

func (s *SalesReadModel) OnEventCreated(_ context.Context, e *event.EventCreated) error {
	if e.Header.LedgerID != s.ledgerID {
		return nil
	}

	s.salesLock.Lock()
	defer s.salesLock.Unlock()

	if _, exists := s.sales[e.EventID]; exists {
		return nil
	}

	s.sales[e.EventID] = EventSales{
		EventID:  e.EventID,
		Name:     e.Name,
		Capacity: e.TicketsAvailable,
		Revenue:  decimal.Zero,
	}

	return nil
}

func (s *SalesReadModel) OnTicketPurchased(_ context.Context, e *event.TicketPurchased) error {
	if e.Header.LedgerID != s.ledgerID {
		return nil
	}

	s.salesLock.Lock()
	defer s.salesLock.Unlock()

	if _, counted := s.counted[e.TicketID]; counted {
		return nil
	}

	es, exists := s.sales[e.EventID]
	if !exists {
		return fmt.Errorf("event not found: %d", e.EventID)
	}

	es.TicketsSold++
	es.Revenue = es.Revenue.Add(e.Payment.Decimal())
	if e.Header.PublishedAt.After(es.LastSaleAt) {
		es.LastSaleAt = e.Header.PublishedAt
	}

	s.sales[e.EventID] = es
	s.counted[e.TicketID] = struct{}{}

	return nil
}
