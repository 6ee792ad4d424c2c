package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
)

// fail logs err under event and converts it to the HTTP error the client
// sees. Internal errors are reported without detail.
func fail(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		available, _ := domain.AvailableStock(err)
		l.Warn(event, "status", http.StatusConflict, "reason", "insufficient stock", "available", available)
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"message":   "insufficient stock",
			"available": available,
		})
	case errors.Is(err, domain.ErrPaymentNotConfirmed):
		status, ok := domain.PaymentStatus(err)
		if !ok {
			status = "unpaid"
		}
		l.Warn(event, "status", http.StatusPaymentRequired, "reason", "payment not confirmed", "payment_status", status)
		return echo.NewHTTPError(http.StatusPaymentRequired, echo.Map{
			"message":        "payment not confirmed",
			"payment_status": status,
		})
	case errors.Is(err, domain.ErrValidation):
		l.Warn(event, "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, detail(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotInCart):
		l.Warn(event, "status", http.StatusNotFound, "reason", "not in cart")
		return echo.NewHTTPError(http.StatusNotFound, "product not in cart")
	case errors.Is(err, domain.ErrUserNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "user not found")
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		l.Warn(event, "status", http.StatusConflict, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, detail(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrInvalidCredentials):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrEmailNotVerified):
		l.Warn(event, "status", http.StatusForbidden, "reason", "email not verified")
		return echo.NewHTTPError(http.StatusForbidden, "verify your email before signing in")
	case errors.Is(err, domain.ErrUnauthorized):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// detail strips the sentinel prefix so "validation: quantity must be ..."
// is reported as "quantity must be ...".
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
