package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/nirik/fas/internal/domain"
)

type response struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Content any    `json:"content,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, response{
		Outcome: domain.OutcomeSuccess.String(),
		Content: payload,
	})
}

// Outcome writes outcome with the status its kind maps to.
func Outcome(c echo.Context, outcome domain.Outcome, message string, content any) error {
	status := StatusOf(outcome.Kind)
	if status >= http.StatusInternalServerError {
		ctx := c.Request().Context()
		slog.ErrorContext(
			ctx, "request failed",
			slog.String("outcome", outcome.Kind.String()),
			slog.String("traceId", trace.SpanFromContext(ctx).SpanContext().TraceID().String()),
			slog.String("path", c.Path()),
			slog.String("module", "rest"),
		)
	}
	return c.JSON(status, response{
		Outcome: outcome.Kind.String(),
		Reason:  outcome.Reason,
		Message: message,
		Content: content,
	})
}

// Error classifies err and writes it with message.
func Error(c echo.Context, err error, message string) error {
	if message == "" {
		message = err.Error()
	}
	return Outcome(c, domain.OutcomeOf(err), message, nil)
}

func BadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, response{
		Outcome: domain.OutcomeIncompleteSubmission.String(),
		Message: err.Error(),
	})
}

func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, response{
		Outcome: domain.OutcomeNotAuthenticated.String(),
		Message: "authentication required",
	})
}

func StatusOf(kind domain.OutcomeKind) int {
	switch kind {
	case domain.OutcomeSuccess, domain.OutcomeAlreadyCompleted, domain.OutcomeAlreadyApplied, domain.OutcomeAlreadyApproved:
		return http.StatusOK
	case domain.OutcomeIncompleteSubmission:
		return http.StatusBadRequest
	case domain.OutcomeValidationFailed:
		return http.StatusUnprocessableEntity
	case domain.OutcomeNotAuthenticated:
		return http.StatusUnauthorized
	case domain.OutcomeNotAuthorized:
		return http.StatusForbidden
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeGraphCycleDetected, domain.OutcomePrerequisiteUnsatisfied, domain.OutcomeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
