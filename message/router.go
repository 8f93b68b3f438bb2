package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

type RouterDeps struct {
	EventProcessorConfig cqrs.EventProcessorConfig
	EventRepo            EventRepo
	Logger               watermill.LoggerAdapter
	SalesReadModel       *SalesReadModel
	TicketRepo           TicketRepo
}

type Router struct {
	*message.Router
}

func NewRouter(deps RouterDeps) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	addMiddlewares(router, deps.Logger)

	ep, err := cqrs.NewEventProcessorWithConfig(router, deps.EventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	handlers := []cqrs.EventHandler{
		cqrs.NewEventHandler("store-event-in-db", handleStoreEventInDB(deps.EventRepo)),
		cqrs.NewEventHandler("store-ticket-in-db", handleStoreTicketInDB(deps.TicketRepo)),
		cqrs.NewEventHandler("mark-ticket-for-sale-in-db", handleMarkTicketForSaleInDB(deps.TicketRepo)),
		cqrs.NewEventHandler("sales-on-event-created", deps.SalesReadModel.OnEventCreated),
		cqrs.NewEventHandler("sales-on-ticket-purchased", deps.SalesReadModel.OnTicketPurchased),
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return &Router{router}, nil
}
