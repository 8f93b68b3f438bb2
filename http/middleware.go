package http

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
)

const (
	headerKeyCorrelationID = "Correlation-ID"
	headerKeyCaller        = "X-Caller"
)

func correlationIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		correlationID := req.Header.Get(headerKeyCorrelationID)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(req.Context(), correlationID)
		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(headerKeyCorrelationID, correlationID)

		return next(c)
	}
}
