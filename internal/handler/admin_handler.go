package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Eursukkul/booth-festa/internal/dto"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/config", h.GetConfig)
	g.PUT("/config", h.SaveConfig)
	g.POST("/config", h.SaveConfig)
	g.POST("/deploy", h.Deploy)
}

func (h *AdminHandler) GetConfig(c echo.Context) error {
	cfg, token, err := h.svc.GetConfig(c.Request().Context())
	if err != nil {
		return adminError(err)
	}

	c.Response().Header().Set("ETag", strconv.Quote(token))
	return c.JSON(http.StatusOK, dto.ConfigResponse{Version: token, Config: cfg})
}

// SaveConfig replaces the whole configuration. With an If-Match header the
// write only succeeds if the stored version still matches it.
func (h *AdminHandler) SaveConfig(c echo.Context) error {
	var cfg models.EventConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	var (
		token string
		err   error
	)
	if match, ok := ifMatch(c.Request().Header.Get("If-Match")); ok {
		token, err = h.svc.SaveConfigIfMatch(ctx, cfg, match)
	} else {
		token, err = h.svc.SaveConfig(ctx, cfg)
	}
	if err != nil {
		return adminError(err)
	}

	c.Response().Header().Set("ETag", strconv.Quote(token))
	return c.JSON(http.StatusOK, dto.SaveConfigResponse{Success: true, Version: token})
}

func (h *AdminHandler) Deploy(c echo.Context) error {
	if err := h.svc.Redeploy(c.Request().Context()); err != nil {
		return adminError(err)
	}
	return c.JSON(http.StatusOK, dto.DeployResponse{Success: true})
}

// ifMatch extracts the entity tag of an If-Match header. "*" and an absent
// header both mean "whatever is stored now".
func ifMatch(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return "", false
	}
	header = strings.TrimPrefix(header, "W/")
	if unquoted, err := strconv.Unquote(header); err == nil {
		return unquoted, true
	}
	return header, true
}

func adminError(err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrConfigConflict):
		return echo.NewHTTPError(http.StatusConflict, service.ErrConfigConflict.Error())
	case errors.Is(err, service.ErrConfigNotFound):
		return echo.NewHTTPError(http.StatusNotFound, service.ErrConfigNotFound.Error())
	case errors.Is(err, service.ErrConfigUndecodable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, service.ErrStoreUnavailable.Error()).SetInternal(err)
	case errors.Is(err, service.ErrDeployFailed):
		return echo.NewHTTPError(http.StatusBadGateway, service.ErrDeployFailed.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
