package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/present/rest/presenter"
	"github.com/nirik/fas/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	sessions *service.SessionService
}

func NewAuthMiddleware(sessions *service.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
	}
}

// IdentifyIdentity resolves a bearer token into the requester's id and
// username. Requests without a valid token pass through anonymously.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get(domain.RequesterAuthHeader)

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, token := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}

			session, err := s.sessions.Resolve(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.sessions.Resolve failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, session.PersonID)
			ctx = context.WithValue(ctx, domain.RequesterUsernameCtxKey, session.Username)
			span.SetAttributes(attribute.Int64("RequesterId", session.PersonID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Restrict refuses requests that IdentifyIdentity could not attribute.
func Restrict(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := RequesterID(c.Request().Context()); !ok {
			return presenter.Unauthorized(c)
		}
		return next(c)
	}
}

func RequesterID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(domain.RequesterIdCtxKey).(int64)
	return id, ok
}
