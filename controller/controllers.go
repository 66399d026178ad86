package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lyftr/sms-webhook/metrics"
	"github.com/lyftr/sms-webhook/service"
	"github.com/lyftr/sms-webhook/service/dto"
)

const signatureHeader = "X-Signature"

// GetWebhookFunc ingests one signed message delivery. Redelivery of an
// already stored message id is acknowledged the same way as first
// delivery, which keeps the endpoint safe under at-least-once senders.
func GetWebhookFunc(srv service.Service, reg *metrics.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		rawBody, err := io.ReadAll(c.Request().Body)
		if err != nil {
			reg.IncWebhook(metrics.ResultUnknown)
			return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
		}

		result, err := srv.IngestWebhook(rawBody, c.Request().Header.Get(signatureHeader))
		if err != nil {
			switch err.(type) {
			case *service.NotConfiguredErr:
				reg.IncWebhook(metrics.ResultSecretMissing)
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"detail": err.Error()})
			case *service.UnauthorizedErr:
				reg.IncWebhook(metrics.ResultInvalidSignature)
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": err.Error()})
			case *service.InvalidPayloadErr:
				reg.IncWebhook(metrics.ResultValidationError)
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": err.Error()})
			default:
				reg.IncWebhook(metrics.ResultUnknown)
				zap.L().Error("webhook ingest failed", zap.Error(err))
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		reg.IncWebhook(result)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}

func GetMessagesFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := dto.QueryParams{
			Limit:  service.DefaultLimit,
			Offset: 0,
			From:   c.QueryParam("from"),
			Since:  c.QueryParam("since"),
			Q:      c.QueryParam("q"),
		}

		if v := c.QueryParam("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "limit must be an integer"})
			}
			params.Limit = limit
		}
		if v := c.QueryParam("offset"); v != "" {
			offset, err := strconv.Atoi(v)
			if err != nil {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "offset must be an integer"})
			}
			params.Offset = offset
		}

		page, err := srv.ListMessages(params)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": err.Error()})
			default:
				zap.L().Error("listing messages failed", zap.Error(err))
				return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
			}
		}

		return c.JSON(http.StatusOK, page)
	}
}

func GetStatsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := srv.Stats()
		if err != nil {
			zap.L().Error("computing stats failed", zap.Error(err))
			return c.String(http.StatusInternalServerError, "System malfunction. Please, try later")
		}

		return c.JSON(http.StatusOK, stats)
	}
}

func GetHealthLiveFunc() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "live"})
	}
}

func GetHealthReadyFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !srv.Ready() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not-ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}

func GetMetricsFunc(reg *metrics.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, reg.Render())
	}
}
