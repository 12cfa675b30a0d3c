package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Eursukkul/booth-festa/internal/dto"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ApplyHandler struct {
	svc       service.ApplyService
	validator *validator.Validate
	now       func() time.Time
}

// NewApplyHandler evaluates deadlines in loc.
func NewApplyHandler(svc service.ApplyService, loc *time.Location) *ApplyHandler {
	return &ApplyHandler{
		svc:       svc,
		validator: validator.New(),
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

func (h *ApplyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/config", h.GetConfig)
	g.GET("/booths", h.ListBooths)
	g.POST("/quote", h.Quote)
}

func (h *ApplyHandler) GetConfig(c echo.Context) error {
	snap, err := h.svc.CurrentConfig(c.Request().Context())
	if err != nil {
		return applyError(err)
	}
	return c.JSON(http.StatusOK, dto.ToConfigResponse(snap))
}

func (h *ApplyHandler) ListBooths(c echo.Context) error {
	cat, err := h.svc.Catalog(c.Request().Context(), h.now())
	if err != nil {
		return applyError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCatalogResponse(cat))
}

func (h *ApplyHandler) Quote(c echo.Context) error {
	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}

	res, err := h.svc.Quote(c.Request().Context(), req.ToSelection(), h.now())
	if err != nil {
		return applyError(err)
	}
	return c.JSON(http.StatusOK, dto.ToQuoteResponse(res))
}

// validationMessage names the offending JSON fields, e.g.
// "chairs must not be negative".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if len(field) > 0 {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		switch fe.Tag() {
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must not be negative", field))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must not exceed %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func applyError(err error) error {
	switch {
	case errors.Is(err, service.ErrNoConfig):
		return echo.NewHTTPError(http.StatusServiceUnavailable, service.ErrNoConfig.Error())
	case errors.Is(err, service.ErrBoothSoldOut):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, service.ErrBoothSoldOut.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
