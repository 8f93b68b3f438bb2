package http

import (
	"fmt"
	"net/http"
	"ticketledger/entity"

	"github.com/labstack/echo/v4"
)

type handler struct {
	ledger     Ledger
	sales      SalesReadModel
	projection Projection
}

type createEventRequest struct {
	Name             string `json:"name"`
	Date             string `json:"date"`
	Location         string `json:"location"`
	TicketPrice      string `json:"ticket_price"`
	TicketsAvailable uint64 `json:"tickets_available"`
}

type eventResponse struct {
	EventID          entity.EventID  `json:"event_id"`
	Name             string          `json:"name"`
	Date             string          `json:"date"`
	Location         string          `json:"location"`
	TicketPrice      string          `json:"ticket_price"`
	TicketsAvailable uint64          `json:"tickets_available"`
	Creator          entity.Identity `json:"creator"`
}

func newEventResponse(e entity.Event) eventResponse {
	return eventResponse{
		EventID:          e.ID,
		Name:             e.Name,
		Date:             e.Date,
		Location:         e.Location,
		TicketPrice:      e.TicketPrice.String(),
		TicketsAvailable: e.TicketsAvailable,
		Creator:          e.Creator,
	}
}

type purchaseRequest struct {
	Payment string `json:"payment"`
}

type setForSaleRequest struct {
	Price string `json:"price"`
}

type ticketResponse struct {
	TicketID  entity.TicketID `json:"ticket_id"`
	EventID   entity.EventID  `json:"event_id"`
	Owner     entity.Identity `json:"owner"`
	Price     string          `json:"price"`
	IsForSale bool            `json:"is_for_sale"`
}

func newTicketResponse(t entity.Ticket) ticketResponse {
	return ticketResponse{
		TicketID:  t.ID,
		EventID:   t.EventID,
		Owner:     t.Owner,
		Price:     t.Price.String(),
		IsForSale: t.IsForSale,
	}
}

func (h handler) CreateEvent(c echo.Context) error {
	creator, err := caller(c)
	if err != nil {
		return err
	}

	var request createEventRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	price, err := parseAmount("ticket_price", request.TicketPrice)
	if err != nil {
		return err
	}

	eventID, err := h.ledger.CreateEvent(c.Request().Context(), creator, entity.NewEvent{
		Name:             request.Name,
		Date:             request.Date,
		Location:         request.Location,
		TicketPrice:      price,
		TicketsAvailable: request.TicketsAvailable,
	})
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusCreated, map[string]entity.EventID{"event_id": eventID})
}

func (h handler) ListEvents(c echo.Context) error {
	events := h.ledger.Events()

	response := make([]eventResponse, 0, len(events))
	for _, e := range events {
		response = append(response, newEventResponse(e))
	}

	return c.JSON(http.StatusOK, response)
}

func (h handler) GetEvent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	e, err := h.ledger.EventDetails(entity.EventID(id))
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, newEventResponse(e))
}

func (h handler) GetEventSales(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	sales, ok := h.sales.SalesByEventID(entity.EventID(id))
	if !ok {
		return &echo.HTTPError{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("no sales recorded for event %d", id),
		}
	}

	return c.JSON(http.StatusOK, sales)
}

func (h handler) PurchaseTicket(c echo.Context) error {
	buyer, err := caller(c)
	if err != nil {
		return err
	}

	id, err := idParam(c)
	if err != nil {
		return err
	}

	var request purchaseRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	payment, err := parseAmount("payment", request.Payment)
	if err != nil {
		return err
	}

	ticketID, err := h.ledger.PurchaseTicket(c.Request().Context(), buyer, entity.EventID(id), payment)
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusCreated, map[string]entity.TicketID{"ticket_id": ticketID})
}

func (h handler) GetTicket(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	t, err := h.ledger.TicketDetails(entity.TicketID(id))
	if err != nil {
		return ledgerError(err)
	}

	return c.JSON(http.StatusOK, newTicketResponse(t))
}

func (h handler) SetTicketForSale(c echo.Context) error {
	owner, err := caller(c)
	if err != nil {
		return err
	}

	id, err := idParam(c)
	if err != nil {
		return err
	}

	var request setForSaleRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", fmt.Errorf("failed to bind request: %w", err))
	}

	price, err := parseAmount("price", request.Price)
	if err != nil {
		return err
	}

	if err := h.ledger.SetTicketForSale(c.Request().Context(), owner, entity.TicketID(id), price); err != nil {
		return ledgerError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h handler) ListOwnerTickets(c echo.Context) error {
	owner := entity.Identity(c.Param("owner"))

	return c.JSON(http.StatusOK, map[string][]entity.TicketID{
		"ticket_ids": h.ledger.TicketsByOwner(owner),
	})
}

// VerifyOwnership answers false for ticket ids that were never minted, 0 included.
func (h handler) VerifyOwnership(c echo.Context) error {
	id, err := uintParam(c)
	if err != nil {
		return err
	}

	owner := entity.Identity(c.Param("owner"))

	return c.JSON(http.StatusOK, map[string]bool{
		"owned": h.ledger.VerifyOwnership(owner, entity.TicketID(id)),
	})
}

func (h handler) GetBalance(c echo.Context) error {
	owner := entity.Identity(c.Param("owner"))

	return c.JSON(http.StatusOK, map[string]string{
		"owner":   string(owner),
		"balance": h.ledger.BalanceOf(owner).String(),
	})
}

func (h handler) ListSales(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sales.AllSales())
}

func (h handler) GetProjectedEvent(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	e, err := h.projection.Event(c.Request().Context(), entity.EventID(id))
	if err != nil {
		return projectionError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"event_id":      e.ID,
		"name":          e.Name,
		"date":          e.Date,
		"location":      e.Location,
		"ticket_price":  e.TicketPrice,
		"tickets_total": e.TicketsAvailable,
		"creator":       e.Creator,
	})
}

func (h handler) ListProjectedTickets(c echo.Context) error {
	owner := entity.Identity(c.Param("owner"))

	tickets, err := h.projection.TicketsByOwner(c.Request().Context(), owner)
	if err != nil {
		return projectionError(err)
	}

	response := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		response = append(response, newTicketResponse(t))
	}

	return c.JSON(http.StatusOK, response)
}
