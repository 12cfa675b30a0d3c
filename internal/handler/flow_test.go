package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/booth-festa/internal/consumer"
	"github.com/Eursukkul/booth-festa/internal/contentstore"
	"github.com/Eursukkul/booth-festa/internal/dto"
	"github.com/Eursukkul/booth-festa/internal/literal"
	"github.com/Eursukkul/booth-festa/internal/middleware"
	"github.com/Eursukkul/booth-festa/internal/models"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The admin and apply services connected by an in-process queue in place of
// RabbitMQ and an in-memory snapshot table in place of PostgreSQL.

const (
	flowPassword = "festa-admin"
	flowPath     = "apply/config.js"
)

type memorySnapshotRepo struct {
	mu   sync.Mutex
	rows []models.ConfigSnapshot
}

func (r *memorySnapshotRepo) Upsert(ctx context.Context, snap *models.ConfigSnapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Version == snap.Version {
			return false, nil
		}
	}
	snap.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, *snap)
	return true, nil
}

func (r *memorySnapshotRepo) Latest(ctx context.Context) (*models.ConfigSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	row := r.rows[len(r.rows)-1]
	return &row, nil
}

func (r *memorySnapshotRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

type nopAcknowledger struct{}

func (nopAcknowledger) Ack(tag uint64, multiple bool) error            { return nil }
func (nopAcknowledger) Nack(tag uint64, multiple, requeue bool) error { return nil }
func (nopAcknowledger) Reject(tag uint64, requeue bool) error          { return nil }

// queuePublisher hands published messages to a consumer as deliveries.
type queuePublisher struct {
	ch chan amqp.Delivery
}

func (p *queuePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.ch <- amqp.Delivery{Acknowledger: nopAcknowledger{}, RoutingKey: routingKey, Body: body}
	return nil
}

type flowEnv struct {
	admin *echo.Echo
	apply *echo.Echo
	store *contentstore.MemoryStore
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()

	store := contentstore.NewMemoryStore()
	store.Put(flowPath, literal.Encode(adminConfig()))

	queue := make(chan amqp.Delivery, 8)
	t.Cleanup(func() { close(queue) })

	applySvc := service.NewApplyService(&memorySnapshotRepo{}, nil)
	consumer.NewConfigConsumer(applySvc).Start(queue)

	adminSvc := service.NewAdminService(store, flowPath, nil, &queuePublisher{ch: queue})

	admin := echo.New()
	admin.HTTPErrorHandler = middleware.ErrorHandler
	NewAdminHandler(adminSvc).RegisterRoutes(admin.Group("/api/v1/admin", middleware.AdminAuth(flowPassword)))

	apply := echo.New()
	apply.HTTPErrorHandler = middleware.ErrorHandler
	NewApplyHandler(applySvc, time.FixedZone("JST", 9*60*60)).RegisterRoutes(apply.Group("/api/v1"))

	return &flowEnv{admin: admin, apply: apply, store: store}
}

func serve(e *echo.Echo, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer() map[string]string {
	return map[string]string{
		echo.HeaderAuthorization: "Bearer " + base64.StdEncoding.EncodeToString([]byte(flowPassword)),
	}
}

func TestFlow_AdminSaveReachesApplyForm(t *testing.T) {
	env := newFlowEnv(t)

	// Nothing has been published to the apply side yet.
	rec := serve(env.apply, http.MethodGet, "/api/v1/booths", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(env.admin, http.MethodGet, "/api/v1/admin/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())

	rec = serve(env.admin, http.MethodGet, "/api/v1/admin/config", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var loaded dto.ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	cfg := loaded.Config.Clone()
	cfg.EarlyBirdDeadline = "2099-12-31 23:59:59"
	cfg.Booths[0].Prices.EarlyBird = 15000
	cfg.Booths = append(cfg.Booths, models.Booth{
		ID: "body_1", Name: "Body care", Location: "Hall 2",
		Prices: models.BoothPrices{Regular: 20000, EarlyBird: 19000},
		Limits: models.BoothLimits{MaxStaff: 2, MaxChairs: 2},
	})
	body, err := json.Marshal(cfg)
	require.NoError(t, err)

	header := bearer()
	header["If-Match"] = etag
	rec = serve(env.admin, http.MethodPut, "/api/v1/admin/config", string(body), header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved dto.SaveConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, strconv.Quote(saved.Version), rec.Header().Get("ETag"))

	// The stored file is the canonical literal of what was saved.
	text, token, err := env.store.Load(context.Background(), flowPath)
	require.NoError(t, err)
	assert.Equal(t, saved.Version, token)
	assert.Equal(t, literal.Encode(cfg), text)

	// A second admin still holding the old version is rejected.
	rec = serve(env.admin, http.MethodPut, "/api/v1/admin/config", string(body), header)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var catalog dto.CatalogResponse
	require.Eventually(t, func() bool {
		rec := serve(env.apply, http.MethodGet, "/api/v1/booths", "", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(rec.Body.Bytes(), &catalog) == nil && catalog.Version == saved.Version
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, catalog.EarlyBird)
	require.Len(t, catalog.Sections, 2)
	assert.Equal(t, "Hall 1", catalog.Sections[0].Location)
	assert.Equal(t, 15000, catalog.Sections[0].Booths[0].Price)
	assert.True(t, catalog.Sections[1].Booths[0].Options.Equipment)

	rec = serve(env.apply, http.MethodPost, "/api/v1/quote",
		`{"boothId":"wall_1","category":"物販","staff":1,"chairs":1,"power":true,"partyCount":2,"secondaryPartyCount":3}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, saved.Version, quote.Version)
	// 15000 booth + 1000 staff + 100 chair + 500 power + 2 x 5000 party
	assert.Equal(t, 26600, quote.Total)
	assert.Len(t, quote.LineItems, 5)
	assert.Empty(t, quote.Warnings)
}

func TestFlow_InvalidSaveLeavesStoreUntouched(t *testing.T) {
	env := newFlowEnv(t)
	before, token, err := env.store.Load(context.Background(), flowPath)
	require.NoError(t, err)

	cfg := adminConfig()
	cfg.EarlyBirdDeadline = "next friday"
	body, _ := json.Marshal(cfg)

	rec := serve(env.admin, http.MethodPost, "/api/v1/admin/config", string(body), bearer())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "earlyBirdDeadline")
	after, tokenAfter, err := env.store.Load(context.Background(), flowPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, token, tokenAfter)
}

func TestFlow_UndecodableStoredFile(t *testing.T) {
	env := newFlowEnv(t)
	env.store.Put(flowPath, "const CONFIG = {\n  booths: [\n")

	rec := serve(env.admin, http.MethodGet, "/api/v1/admin/config", "", bearer())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "line 2, column 11: unclosed")
}

func TestFlow_OmittedListsComeBackEmpty(t *testing.T) {
	env := newFlowEnv(t)

	rec := serve(env.admin, http.MethodPut, "/api/v1/admin/config",
		`{"earlyBirdDeadline":"2026-05-31 23:59:59"}`, bearer())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(env.admin, http.MethodGet, "/api/v1/admin/config", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
	var raw struct {
		Config map[string]json.RawMessage `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw.Config["categories"]))
	assert.JSONEq(t, `[]`, string(raw.Config["booths"]))
}
