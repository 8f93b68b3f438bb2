package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"ticketledger/db"
	"ticketledger/service"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const httpAddr = "localhost:18080"

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}

	dbConn, err := sqlx.Open("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbConn.Close()
	})

	require.NoError(t, db.InitialiseDB(context.Background(), dbConn))

	return dbConn
}

// startService runs the service until the returned function is called.
func startService(t *testing.T, rdb *redis.Client, dbConn *sqlx.DB) (stop func()) {
	t.Helper()

	svc, err := service.New(service.Deps{
		Logger:      watermill.NewStdLogger(false, false),
		RedisClient: rdb,
		DB:          dbConn,
		HTTPAddr:    httpAddr,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, svc.Run(ctx))
	}()

	stopped := false
	stop = func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		<-done
	}
	t.Cleanup(stop)

	waitForHttpServer(t)

	return stop
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get("http://" + httpAddr + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}

func sendRequest(t *testing.T, method, path, caller string, body any, wantStatus int, response any) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, "http://"+httpAddr+path, bytes.NewReader(payload))
	require.NoError(t, err)

	req.Header.Set("Correlation-ID", shortuuid.New())
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	if response != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(response))
	}
}

// getEventually polls path until it answers 200 and check passes.
func getEventually(t *testing.T, path string, check func(collectT *assert.CollectT, body []byte)) {
	t.Helper()

	assert.EventuallyWithT(t, func(collectT *assert.CollectT) {
		resp, err := http.Get("http://" + httpAddr + path)
		if !assert.NoError(collectT, err) {
			return
		}
		defer resp.Body.Close()

		if !assert.Equal(collectT, http.StatusOK, resp.StatusCode, path) {
			return
		}

		body, err := io.ReadAll(resp.Body)
		if !assert.NoError(collectT, err) {
			return
		}
		check(collectT, body)
	}, 10*time.Second, 100*time.Millisecond)
}

type projectedEvent struct {
	Name    string `json:"name"`
	Creator string `json:"creator"`
}

type projectedTicket struct {
	TicketID  uint64 `json:"ticket_id"`
	Price     string `json:"price"`
	IsForSale bool   `json:"is_for_sale"`
}

func TestComponent(t *testing.T) {
	rdb := setupRedis(t)
	dbConn := setupDB(t)

	startService(t, rdb, dbConn)

	creator := "creator-" + uuid.NewString()
	buyer := "buyer-" + uuid.NewString()

	var created struct {
		EventID uint64 `json:"event_id"`
	}
	sendRequest(t, http.MethodPost, "/events", creator, map[string]any{
		"name":              "Concert",
		"date":              "2024-12-31",
		"location":          "Moscow",
		"ticket_price":      "0.1",
		"tickets_available": 2,
	}, http.StatusCreated, &created)
	assert.Equal(t, uint64(1), created.EventID)

	var purchased struct {
		TicketID uint64 `json:"ticket_id"`
	}
	sendRequest(t, http.MethodPost, "/events/1/purchases", buyer, map[string]string{"payment": "0.25"}, http.StatusCreated, &purchased)
	assert.Equal(t, uint64(1), purchased.TicketID)

	var owned struct {
		Owned bool `json:"owned"`
	}
	sendRequest(t, http.MethodGet, "/owners/"+buyer+"/tickets/1", "", nil, http.StatusOK, &owned)
	assert.True(t, owned.Owned)

	var balance struct {
		Balance string `json:"balance"`
	}
	sendRequest(t, http.MethodGet, "/balances/"+creator, "", nil, http.StatusOK, &balance)
	assert.Equal(t, "0.25", balance.Balance)

	sendRequest(t, http.MethodPut, "/tickets/1/sale", buyer, map[string]string{"price": "1"}, http.StatusNoContent, nil)

	t.Run("projections", func(t *testing.T) {
		getEventually(t, "/reports/events/1", func(collectT *assert.CollectT, body []byte) {
			var e projectedEvent
			if !assert.NoError(collectT, json.Unmarshal(body, &e)) {
				return
			}
			assert.Equal(collectT, creator, e.Creator)
		})

		getEventually(t, "/reports/owners/"+buyer+"/tickets", func(collectT *assert.CollectT, body []byte) {
			var tickets []projectedTicket
			if !assert.NoError(collectT, json.Unmarshal(body, &tickets)) || !assert.Len(collectT, tickets, 1) {
				return
			}
			assert.True(collectT, tickets[0].IsForSale)
			assert.Equal(collectT, "1", tickets[0].Price)
		})

		getEventually(t, "/events/1/sales", func(collectT *assert.CollectT, body []byte) {
			var sales struct {
				TicketsSold uint64 `json:"tickets_sold"`
				Revenue     string `json:"revenue"`
			}
			if !assert.NoError(collectT, json.Unmarshal(body, &sales)) {
				return
			}
			assert.Equal(collectT, uint64(1), sales.TicketsSold)
			assert.Equal(collectT, "0.25", sales.Revenue)
		})
	})

	t.Run("rejected purchases", func(t *testing.T) {
		sendRequest(t, http.MethodPost, "/events/1/purchases", buyer, map[string]string{"payment": "0.01"}, http.StatusPaymentRequired, nil)
		sendRequest(t, http.MethodPost, "/events/1/purchases", buyer, map[string]string{"payment": "0.1"}, http.StatusCreated, nil)
		sendRequest(t, http.MethodPost, "/events/1/purchases", buyer, map[string]string{"payment": "0.1"}, http.StatusConflict, nil)
	})
}

func TestComponent_Restart(t *testing.T) {
	rdb := setupRedis(t)
	dbConn := setupDB(t)

	create := func(name, creator string) {
		t.Helper()

		var created struct {
			EventID uint64 `json:"event_id"`
		}
		sendRequest(t, http.MethodPost, "/events", creator, map[string]any{
			"name":              name,
			"ticket_price":      "1",
			"tickets_available": 1,
		}, http.StatusCreated, &created)
		require.Equal(t, uint64(1), created.EventID)
	}

	stop := startService(t, rdb, dbConn)
	create("Concert", "creator-"+uuid.NewString())
	getEventually(t, "/reports/events/1", func(collectT *assert.CollectT, body []byte) {
		var e projectedEvent
		if assert.NoError(collectT, json.Unmarshal(body, &e)) {
			assert.Equal(collectT, "Concert", e.Name)
		}
	})
	stop()

	startService(t, rdb, dbConn)

	resp, err := http.Get("http://" + httpAddr + "/reports/events/1")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "a new ledger starts with an empty projection")

	opera := "creator-" + uuid.NewString()
	create("Opera", opera)
	getEventually(t, "/reports/events/1", func(collectT *assert.CollectT, body []byte) {
		var e projectedEvent
		if assert.NoError(collectT, json.Unmarshal(body, &e)) {
			assert.Equal(collectT, "Opera", e.Name)
			assert.Equal(collectT, opera, e.Creator)
		}
	})
}
