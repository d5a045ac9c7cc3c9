package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/domain"
	"github.com/nirik/fas/internal/present/rest/middleware"
	"github.com/nirik/fas/internal/present/rest/presenter"
	"github.com/nirik/fas/internal/service"
	"github.com/nirik/fas/internal/usecase"
)

type Handler struct {
	config     domain.Config
	agreement  *usecase.AgreementUsecase
	revocation *usecase.RevocationUsecase
	membership *usecase.MembershipUsecase
	group      *usecase.GroupUsecase
	signal     *service.SignalService
}

func NewHandler(
	config domain.Config,
	agreement *usecase.AgreementUsecase,
	revocation *usecase.RevocationUsecase,
	membership *usecase.MembershipUsecase,
	group *usecase.GroupUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:     config,
		agreement:  agreement,
		revocation: revocation,
		membership: membership,
		group:      group,
		signal:     signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/cla", h.handleView, middleware.Restrict)
	e.POST("/cla/send", h.handleSubmit, middleware.Restrict)
	e.POST("/cla/reject/:username", h.handleReject, middleware.Restrict)
	e.POST("/groups", h.handleCreateGroup, middleware.Restrict)
	e.PUT("/groups/:name/prerequisite", h.handleSetPrerequisite, middleware.Restrict)
	e.POST("/groups/:name/apply", h.handleApply, middleware.Restrict)
	e.POST("/groups/:name/sponsor/:username", h.handleSponsor, middleware.Restrict)
	e.GET("/audit/realtime", h.handleRealtime, middleware.Restrict)
}

func requester(c echo.Context) int64 {
	id, _ := middleware.RequesterID(c.Request().Context())
	return id
}

func (h *Handler) handleView(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.agreement.View(ctx, requester(c))
	if err != nil {
		return presenter.Error(c, err, "")
	}
	if !view.Ready {
		return presenter.Outcome(c, domain.Outcome{
			Kind:   domain.OutcomeValidationFailed,
			Reason: view.Reason,
		}, msgProfileRequired, view)
	}
	return presenter.OK(c, view)
}

type submitRequest struct {
	domain.Profile
	Confirm bool `json:"confirm" form:"confirm"`
	Agree   bool `json:"agree" form:"agree"`
}

func (h *Handler) handleSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	var request submitRequest
	if err := c.Bind(&request); err != nil {
		return presenter.BadRequest(c, err)
	}

	id := requester(c)
	outcome, err := h.agreement.Submit(ctx, usecase.SubmitInput{
		RequesterID: id,
		PersonID:    id,
		Profile:     request.Profile,
		Confirmed:   request.Confirm,
		Agreed:      request.Agree,
	})
	if err != nil && outcome.Kind == domain.OutcomeUnknown {
		slog.ErrorContext(
			ctx, "unclassified submit failure",
			slog.String("error", err.Error()),
			slog.String("module", "agreement"),
		)
	}
	return presenter.Outcome(c, outcome, submitMessage(outcome, h.config.ClaGroup), nil)
}

func (h *Handler) handleReject(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.Param("username")

	result, err := h.revocation.Reject(ctx, requester(c), username)
	if err != nil {
		slog.InfoContext(
			ctx, "reject failed",
			slog.String("error", err.Error()),
			slog.String("target", username),
			slog.String("module", "revocation"),
		)
	}
	return presenter.Outcome(c, result.Outcome, rejectMessage(result.Outcome, username), result)
}

func (h *Handler) handleCreateGroup(c echo.Context) error {
	ctx := c.Request().Context()

	var request usecase.CreateGroupInput
	if err := c.Bind(&request); err != nil {
		return presenter.BadRequest(c, err)
	}

	group, err := h.group.Create(ctx, requester(c), request)
	if err != nil {
		return presenter.Error(c, err, "")
	}
	return presenter.Outcome(c, domain.Outcome{Kind: domain.OutcomeSuccess}, "", group)
}

type prerequisiteRequest struct {
	Prerequisite string `json:"prerequisite" form:"prerequisite"`
}

func (h *Handler) handleSetPrerequisite(c echo.Context) error {
	ctx := c.Request().Context()

	var request prerequisiteRequest
	if err := c.Bind(&request); err != nil {
		return presenter.BadRequest(c, err)
	}

	err := h.group.SetPrerequisite(ctx, requester(c), c.Param("name"), request.Prerequisite)
	if err != nil {
		return presenter.Error(c, err, "")
	}
	return presenter.OK(c, nil)
}

func (h *Handler) handleApply(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("name")

	err := h.membership.Apply(ctx, requester(c), name)
	if errors.Is(err, domain.ErrAlreadyApplied) {
		return presenter.Outcome(c, domain.OutcomeOf(err), fmt.Sprintf("You are already a part of the '%s' group.", name), nil)
	}
	if err != nil {
		return presenter.Error(c, err, fmt.Sprintf("You could not be added to the '%s' group.", name))
	}
	return presenter.OK(c, nil)
}

func (h *Handler) handleSponsor(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.membership.Sponsor(ctx, requester(c), c.Param("username"), c.Param("name"))
	if err != nil {
		return presenter.Error(c, err, "")
	}
	return presenter.OK(c, nil)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.group.Authorize(ctx, requester(c)); err != nil {
		return presenter.Error(c, err, "")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	output := make(chan fas.AuditEvent)
	quit := make(chan struct{})

	go h.signal.Realtime(ctx, output)

	go func() {
		defer close(quit)
		for {
			// the feed is one way; reads only detect the close
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
