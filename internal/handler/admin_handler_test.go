package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Eursukkul/booth-festa/internal/dto"
	"github.com/Eursukkul/booth-festa/internal/literal"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock AdminService ---

type mockAdminService struct {
	getFn      func(ctx context.Context) (models.EventConfig, string, error)
	saveFn     func(ctx context.Context, cfg models.EventConfig) (string, error)
	saveIfFn   func(ctx context.Context, cfg models.EventConfig, token string) (string, error)
	redeployFn func(ctx context.Context) error
}

func (m *mockAdminService) GetConfig(ctx context.Context) (models.EventConfig, string, error) {
	return m.getFn(ctx)
}
func (m *mockAdminService) SaveConfig(ctx context.Context, cfg models.EventConfig) (string, error) {
	return m.saveFn(ctx, cfg)
}
func (m *mockAdminService) SaveConfigIfMatch(ctx context.Context, cfg models.EventConfig, token string) (string, error) {
	return m.saveIfFn(ctx, cfg, token)
}
func (m *mockAdminService) Redeploy(ctx context.Context) error {
	return m.redeployFn(ctx)
}

// --- Helpers ---

func adminConfig() models.EventConfig {
	return models.EventConfig{
		EarlyBirdDeadline: "2026-05-31 23:59:59",
		UnitPrices:        models.UnitPrices{Chair: 100, Power: 500, Staff: 1000, Party: 5000},
		Categories:        []string{"物販"},
		Booths: []models.Booth{{
			ID: "wall_1", Name: "Wall A", Location: "Hall 1",
			Prices: models.BoothPrices{Regular: 17000, EarlyBird: 16000},
			Limits: models.BoothLimits{MaxStaff: 1, MaxChairs: 1, AllowPower: true},
		}},
	}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code
}

// --- Tests ---

func TestGetConfig_Handler_Success(t *testing.T) {
	svc := &mockAdminService{
		getFn: func(ctx context.Context) (models.EventConfig, string, error) {
			return adminConfig(), "sha-1", nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/config", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewAdminHandler(svc).GetConfig(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"sha-1"`, rec.Header().Get("ETag"))

	var resp dto.ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sha-1", resp.Version)
	assert.Equal(t, adminConfig(), resp.Config)
}

func TestGetConfig_Handler_Errors(t *testing.T) {
	undecodable := fmt.Errorf("%w: %w", service.ErrConfigUndecodable, &literal.DecodeError{Pos: literal.Position{Line: 3, Column: 1}, Msg: "unclosed '{'"})
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"undecodable", undecodable, http.StatusUnprocessableEntity},
		{"missing", service.ErrConfigNotFound, http.StatusNotFound},
		{"store down", fmt.Errorf("load config: %w", service.ErrStoreUnavailable), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAdminService{
				getFn: func(ctx context.Context) (models.EventConfig, string, error) {
					return models.EventConfig{}, "", tt.err
				},
			}
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/admin/config", nil), httptest.NewRecorder())

			err := NewAdminHandler(svc).GetConfig(c)

			assert.Equal(t, tt.want, httpCode(t, err))
		})
	}
}

func TestGetConfig_Handler_UndecodableShowsPosition(t *testing.T) {
	svc := &mockAdminService{
		getFn: func(ctx context.Context) (models.EventConfig, string, error) {
			return models.EventConfig{}, "", fmt.Errorf("%w: %w", service.ErrConfigUndecodable,
				&literal.DecodeError{Pos: literal.Position{Line: 3, Column: 1}, Msg: "unclosed '{'"})
		},
	}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/admin/config", nil), httptest.NewRecorder())

	err := NewAdminHandler(svc).GetConfig(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Contains(t, he.Message, "line 3, column 1")
}

func TestSaveConfig_Handler_WithoutIfMatch(t *testing.T) {
	var got models.EventConfig
	svc := &mockAdminService{
		saveFn: func(ctx context.Context, cfg models.EventConfig) (string, error) {
			got = cfg
			return "sha-2", nil
		},
	}
	body, err := json.Marshal(adminConfig())
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/config", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = NewAdminHandler(svc).SaveConfig(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, adminConfig(), got)
	assert.Equal(t, `"sha-2"`, rec.Header().Get("ETag"))

	var resp dto.SaveConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sha-2", resp.Version)
}

func TestSaveConfig_Handler_IfMatch(t *testing.T) {
	var gotToken string
	svc := &mockAdminService{
		saveIfFn: func(ctx context.Context, cfg models.EventConfig, token string) (string, error) {
			gotToken = token
			return "", service.ErrConfigConflict
		},
	}
	body, _ := json.Marshal(adminConfig())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/config", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("If-Match", `W/"sha-1"`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := NewAdminHandler(svc).SaveConfig(c)

	assert.Equal(t, http.StatusConflict, httpCode(t, err))
	assert.Equal(t, "sha-1", gotToken)
}

func TestSaveConfig_Handler_BadBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/config", strings.NewReader(`{"booths": "none"`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := NewAdminHandler(&mockAdminService{}).SaveConfig(c)

	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestSaveConfig_Handler_ValidationError(t *testing.T) {
	svc := &mockAdminService{
		saveFn: func(ctx context.Context, cfg models.EventConfig) (string, error) {
			return "", fmt.Errorf("%w: %w", service.ErrInvalidConfig, &models.ValidationError{Problems: []string{"booths[0].id is required"}})
		},
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/config", strings.NewReader(`{"booths":[{}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := NewAdminHandler(svc).SaveConfig(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "invalid config: booths[0].id is required", he.Message)
}

func TestDeploy_Handler(t *testing.T) {
	calls := 0
	svc := &mockAdminService{
		redeployFn: func(ctx context.Context) error {
			calls++
			if calls > 1 {
				return fmt.Errorf("%w: hook returned HTTP 500", service.ErrDeployFailed)
			}
			return nil
		},
	}
	h := NewAdminHandler(svc)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.Deploy(e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/admin/deploy", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	err := h.Deploy(e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/admin/deploy", nil), httptest.NewRecorder()))
	assert.Equal(t, http.StatusBadGateway, httpCode(t, err))
}

func TestIfMatch(t *testing.T) {
	tests := map[string]struct {
		token string
		ok    bool
	}{
		"":          {"", false},
		"*":         {"", false},
		`"abc"`:     {"abc", true},
		`W/"abc"`:   {"abc", true},
		"bare-sha":  {"bare-sha", true},
		` "spaced"`: {"spaced", true},
	}
	for header, want := range tests {
		token, ok := ifMatch(header)
		assert.Equal(t, want.ok, ok, header)
		assert.Equal(t, want.token, token, header)
	}
}
