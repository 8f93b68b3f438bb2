package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"ticketledger/db"
	"ticketledger/entity"
	"ticketledger/ledger"

	"github.com/labstack/echo/v4"
)

func ledgerError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientPayment):
		code = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrSoldOut):
		code = http.StatusConflict
	case errors.Is(err, ledger.ErrUnauthorized):
		code = http.StatusForbidden
	}

	message := http.StatusText(code)
	var le *ledger.Error
	if errors.As(err, &le) {
		message = le.Error()
	}

	return &echo.HTTPError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

func projectionError(err error) *echo.HTTPError {
	if errors.Is(err, db.ErrNotFound) {
		return &echo.HTTPError{
			Code:     http.StatusNotFound,
			Message:  "not projected yet",
			Internal: err,
		}
	}

	return &echo.HTTPError{
		Code:     http.StatusInternalServerError,
		Message:  http.StatusText(http.StatusInternalServerError),
		Internal: err,
	}
}

func badRequest(message string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusBadRequest,
		Message:  message,
		Internal: err,
	}
}

func caller(c echo.Context) (entity.Identity, error) {
	identity := c.Request().Header.Get(headerKeyCaller)
	if identity == "" {
		return "", &echo.HTTPError{
			Code:    http.StatusUnauthorized,
			Message: fmt.Sprintf("missing %s header", headerKeyCaller),
		}
	}

	return entity.Identity(identity), nil
}

// uintParam parses the id path parameter, accepting 0.
func uintParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid id", fmt.Errorf("parsing id %q: %w", c.Param("id"), err))
	}

	return id, nil
}

func idParam(c echo.Context) (uint64, error) {
	id, err := uintParam(c)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, badRequest("invalid id", errors.New("ids start at 1"))
	}

	return id, nil
}

func parseAmount(field, value string) (entity.Amount, error) {
	amount, err := entity.ParseAmount(value)
	if err != nil {
		return entity.Amount{}, badRequest(fmt.Sprintf("invalid %s", field), err)
	}

	return amount, nil
}
