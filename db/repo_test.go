package db_test

import (
	"context"
	"errors"
	"testing"
	"ticketledger/db"
	"ticketledger/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerID = "6f1c2a4e-8d3b-4f7a-9b0e-2c5d7e9f1a3b"

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return sqlx.NewDb(conn, "postgres"), mock
}

func mustUnits(t *testing.T, units string) entity.Amount {
	t.Helper()

	a, err := entity.AmountFromUnits(units)
	require.NoError(t, err)
	return a
}

func TestInitialiseDB(t *testing.T) {
	dbConn, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projected_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projected_tickets").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.InitialiseDB(context.Background(), dbConn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitialiseDB_error(t *testing.T) {
	dbConn, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projected_events").WillReturnError(errors.New("permission denied"))

	err := db.InitialiseDB(context.Background(), dbConn)
	require.ErrorContains(t, err, "creating events table")
}

func TestEventRepo_Add(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewEventRepo(dbConn)

	e := entity.Event{
		ID:               1,
		Name:             "Concert",
		Date:             "2024-12-31",
		Location:         "Moscow",
		TicketPrice:      mustUnits(t, "100000000000000000"),
		TicketsAvailable: 100,
		Creator:          "0xcreator",
	}

	mock.ExpectExec("INSERT INTO projected_events").
		WithArgs(ledgerID, 1, "Concert", "2024-12-31", "Moscow", "100000000000000000", 100, "0xcreator").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, r.Add(context.Background(), ledgerID, e))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_Get(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewEventRepo(dbConn)

	rows := sqlmock.NewRows([]string{"event_id", "name", "date", "location", "ticket_price", "tickets_total", "creator"}).
		AddRow(1, "Concert", "2024-12-31", "Moscow", "250000000000000000000", 100, "0xcreator")
	mock.ExpectQuery("SELECT (.+) FROM projected_events WHERE ledger_id = (.+) AND event_id").
		WithArgs(ledgerID, 1).
		WillReturnRows(rows)

	e, err := r.Get(context.Background(), ledgerID, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.Event{
		ID:               1,
		Name:             "Concert",
		Date:             "2024-12-31",
		Location:         "Moscow",
		TicketPrice:      mustUnits(t, "250000000000000000000"),
		TicketsAvailable: 100,
		Creator:          "0xcreator",
	}, e)
	assert.Equal(t, "250", e.TicketPrice.String())
}

func TestEventRepo_Get_notFound(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewEventRepo(dbConn)

	mock.ExpectQuery("SELECT (.+) FROM projected_events WHERE ledger_id = (.+) AND event_id").
		WithArgs(ledgerID, 7).
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}))

	_, err := r.Get(context.Background(), ledgerID, 7)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestTicketRepo_Add(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewTicketRepo(dbConn)

	ticket := entity.Ticket{
		ID:      3,
		EventID: 1,
		Owner:   "0xbuyer",
		Price:   mustUnits(t, "18446744073709551616"),
	}

	mock.ExpectExec("INSERT INTO projected_tickets").
		WithArgs(ledgerID, 3, 1, "0xbuyer", "18446744073709551616", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO projected_tickets").
		WithArgs(ledgerID, 3, 1, "0xbuyer", "18446744073709551616", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.Add(context.Background(), ledgerID, ticket))
	require.NoError(t, r.Add(context.Background(), ledgerID, ticket), "redelivered ticket must be ignored")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepo_MarkForSale(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "listed", rowsAffected: 1},
		{name: "unknown ticket", rowsAffected: 0, wantErr: db.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbConn, mock := newMockDB(t)
			r := db.NewTicketRepo(dbConn)

			mock.ExpectExec("UPDATE projected_tickets SET is_for_sale").
				WithArgs(ledgerID, 3, "1500000000000000000").
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))

			err := r.MarkForSale(context.Background(), ledgerID, 3, mustUnits(t, "1500000000000000000"))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTicketRepo_ListByOwner(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewTicketRepo(dbConn)

	rows := sqlmock.NewRows([]string{"ticket_id", "event_id", "owner", "price", "is_for_sale"}).
		AddRow(1, 1, "0xbuyer", "100", false).
		AddRow(4, 2, "0xbuyer", "250", true)
	mock.ExpectQuery("SELECT (.+) FROM projected_tickets WHERE ledger_id = (.+) AND owner").
		WithArgs(ledgerID, "0xbuyer").
		WillReturnRows(rows)

	tickets, err := r.ListByOwner(context.Background(), ledgerID, "0xbuyer")
	require.NoError(t, err)
	assert.Equal(t, []entity.Ticket{
		{ID: 1, EventID: 1, Owner: "0xbuyer", Price: entity.NewAmount(100)},
		{ID: 4, EventID: 2, Owner: "0xbuyer", Price: entity.NewAmount(250), IsForSale: true},
	}, tickets)
}

func TestTicketRepo_ListByOwner_empty(t *testing.T) {
	dbConn, mock := newMockDB(t)
	r := db.NewTicketRepo(dbConn)

	mock.ExpectQuery("SELECT (.+) FROM projected_tickets WHERE ledger_id = (.+) AND owner").
		WithArgs(ledgerID, "0xnobody").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "event_id", "owner", "price", "is_for_sale"}))

	tickets, err := r.ListByOwner(context.Background(), ledgerID, "0xnobody")
	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
}

func TestProjection_scopedToLedger(t *testing.T) {
	dbConn, mock := newMockDB(t)
	p := db.NewProjection(dbConn, ledgerID)

	mock.ExpectQuery("SELECT (.+) FROM projected_events WHERE ledger_id = (.+) AND event_id").
		WithArgs(ledgerID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "name", "date", "location", "ticket_price", "tickets_total", "creator"}).
			AddRow(1, "Opera", "", "", "0", 5, "0xcreator"))
	mock.ExpectQuery("SELECT (.+) FROM projected_tickets WHERE ledger_id = (.+) AND owner").
		WithArgs(ledgerID, "0xbuyer").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "event_id", "owner", "price", "is_for_sale"}))

	e, err := p.Event(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Opera", e.Name)
	assert.True(t, e.TicketPrice.IsZero())

	tickets, err := p.TicketsByOwner(context.Background(), "0xbuyer")
	require.NoError(t, err)
	assert.Empty(t, tickets)
	require.NoError(t, mock.ExpectationsWereMet())
}
