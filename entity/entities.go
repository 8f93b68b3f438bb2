package entity

type (
	EventID  uint64
	TicketID uint64

	// Identity is the account an operation is performed as.
	Identity string
)

type Event struct {
	ID               EventID  `json:"event_id"`
	Name             string   `json:"name"`
	Date             string   `json:"date"`
	Location         string   `json:"location"`
	TicketPrice      Amount   `json:"ticket_price"`
	TicketsAvailable uint64   `json:"tickets_available"`
	Creator          Identity `json:"creator"`
}

type NewEvent struct {
	Name             string
	Date             string
	Location         string
	TicketPrice      Amount
	TicketsAvailable uint64
}

type Ticket struct {
	ID        TicketID `json:"ticket_id"`
	EventID   EventID  `json:"event_id"`
	Owner     Identity `json:"owner"`
	Price     Amount   `json:"price"`
	IsForSale bool     `json:"is_for_sale"`
}
