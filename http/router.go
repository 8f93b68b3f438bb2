package http

import (
	"context"
	"net/http"
	"ticketledger/entity"
	"ticketledger/message"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type Ledger interface {
	CreateEvent(ctx context.Context, caller entity.Identity, e entity.NewEvent) (entity.EventID, error)
	PurchaseTicket(ctx context.Context, caller entity.Identity, eventID entity.EventID, payment entity.Amount) (entity.TicketID, error)
	SetTicketForSale(ctx context.Context, caller entity.Identity, ticketID entity.TicketID, price entity.Amount) error
	EventDetails(eventID entity.EventID) (entity.Event, error)
	Events() []entity.Event
	TicketDetails(ticketID entity.TicketID) (entity.Ticket, error)
	TicketsByOwner(owner entity.Identity) []entity.TicketID
	VerifyOwnership(owner entity.Identity, ticketID entity.TicketID) bool
	BalanceOf(identity entity.Identity) entity.Amount
}

type SalesReadModel interface {
	AllSales() []message.EventSales
	SalesByEventID(id entity.EventID) (message.EventSales, bool)
}

// Projection serves the Postgres copy of the ledger, which trails it by the notification
// delivery delay.
type Projection interface {
	Event(ctx context.Context, eventID entity.EventID) (entity.Event, error)
	TicketsByOwner(ctx context.Context, owner entity.Identity) ([]entity.Ticket, error)
}

func NewRouter(ledger Ledger, sales SalesReadModel, projection Projection) *echo.Echo {
	server := commonHTTP.NewEcho()
	server.Use(correlationIDMiddleware)

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := handler{
		ledger:     ledger,
		sales:      sales,
		projection: projection,
	}

	server.POST("/events", handler.CreateEvent)
	server.GET("/events", handler.ListEvents)
	server.GET("/events/:id", handler.GetEvent)
	server.GET("/events/:id/sales", handler.GetEventSales)
	server.POST("/events/:id/purchases", handler.PurchaseTicket)
	server.GET("/tickets/:id", handler.GetTicket)
	server.PUT("/tickets/:id/sale", handler.SetTicketForSale)
	server.GET("/owners/:owner/tickets", handler.ListOwnerTickets)
	server.GET("/owners/:owner/tickets/:id", handler.VerifyOwnership)
	server.GET("/balances/:owner", handler.GetBalance)

	server.GET("/sales", handler.ListSales)
	server.GET("/reports/events/:id", handler.GetProjectedEvent)
	server.GET("/reports/owners/:owner/tickets", handler.ListProjectedTickets)

	return server
}
