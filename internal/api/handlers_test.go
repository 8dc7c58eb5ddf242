package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ivyresort/internal/config"
	"ivyresort/internal/database"
	"ivyresort/internal/events"
	"ivyresort/internal/models"
	"ivyresort/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMailer struct {
	err error
}

func (m *testMailer) SendConfirmation(_ context.Context, _ *models.Reservation) error {
	return m.err
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	handler http.Handler
	db      *database.DB
	mailer  *testMailer
}

func newTestServer(t *testing.T, cfg config.APIConfig) *testServer {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetRoomTypes([]models.RoomType{
		{ID: 1, Name: "Standard Twin", Price: 120, Capacity: 2, SortOrder: 1},
		{ID: 2, Name: "Family Suite", Price: 260, Capacity: 4, SortOrder: 2},
	})

	mailer := &testMailer{}
	reservations := service.NewReservationService(db, events.NewEventBus(), mailer, nil, logger)
	users := service.NewUserService(db, logger)

	srv := NewHTTPServer(cfg, reservations, users, logger)
	return &testServer{handler: srv.Handler(), db: db, mailer: mailer}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func createBody() map[string]any {
	return map[string]any{
		"guest_name":   "John Smith",
		"email":        "john@example.com",
		"room_name":    "Standard Twin",
		"check_in":     "2026-06-01",
		"check_out":    "2026-06-03",
		"guests":       2,
		"total_amount": 240,
	}
}

func TestCreateReservation_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	rec, env := ts.do(t, http.MethodPost, "/api/reservations", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "IVY-")

	var created models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Regexp(t, `^IVY-[0-9a-z]+-[0-9A-Z]{6}$`, created.ConfirmationID)
	assert.Equal(t, models.StatusConfirmed, created.Status)
	assert.True(t, created.EmailSent)
}

func TestCreateReservation_EmailDownStaysPending(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})
	ts.mailer.err = errors.New("every transport failed")

	rec, env := ts.do(t, http.MethodPost, "/api/reservations", createBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.EmailSent)
}

func TestCreateReservation_MissingFields(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	for _, field := range []string{"guest_name", "email", "room_name", "check_in", "check_out", "total_amount"} {
		t.Run(field, func(t *testing.T) {
			body := createBody()
			delete(body, field)
			rec, env := ts.do(t, http.MethodPost, "/api/reservations", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, field)
		})
	}

	// Nothing persisted by the rejected creates.
	rec, env := ts.do(t, http.MethodGet, "/api/reservations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.Count)
}

func TestListReservations_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	for i := 0; i < 3; i++ {
		body := createBody()
		body["email"] = fmt.Sprintf("guest%d@example.com", i)
		rec, _ := ts.do(t, http.MethodPost, "/api/reservations", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, env := ts.do(t, http.MethodGet, "/api/reservations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Count)

	rec, env = ts.do(t, http.MethodGet, "/api/reservations?status=confirmed&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.Count)

	rec, _ = ts.do(t, http.MethodGet, "/api/reservations?since=not-a-time", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReservation_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})
	ts.mailer.err = errors.New("down")

	_, env := ts.do(t, http.MethodPost, "/api/reservations", createBody())
	var created models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, models.StatusPending, created.Status)

	rec, env := ts.do(t, http.MethodPut, fmt.Sprintf("/api/reservations/%d", created.ID), map[string]any{
		"status":     "confirmed",
		"email_sent": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.True(t, updated.EmailSent)
	assert.Equal(t, created.GuestName, updated.GuestName)
	assert.Greater(t, updated.Version, created.Version)
}

func TestUpdateReservation_UnknownID(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	rec, env := ts.do(t, http.MethodPut, "/api/reservations/424242", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Reservation not found", env.Error)

	rec, env = ts.do(t, http.MethodPut, "/api/reservations/not-a-number", map[string]any{})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reservation not found", env.Error)
}

func TestUpdateReservation_InvalidTransition(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})
	ts.mailer.err = errors.New("down")

	_, env := ts.do(t, http.MethodPost, "/api/reservations", createBody())
	var created models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env := ts.do(t, http.MethodPut, fmt.Sprintf("/api/reservations/%d", created.ID), map[string]any{
		"status": "checked-in",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestDeleteReservation_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	_, env := ts.do(t, http.MethodPost, "/api/reservations", createBody())
	var created models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, _ := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/reservations/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/reservations/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reservation not found", env.Error)
}

func TestStats_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})
	ts.mailer.err = errors.New("down")
	ctx := context.Background()

	seed := func(status string, amount float64) {
		res := &models.Reservation{
			ConfirmationID: fmt.Sprintf("IVY-seed-%s", status),
			GuestName:      "guest",
			Email:          "guest@example.com",
			RoomName:       "Standard Twin",
			CheckIn:        "2026-06-01",
			CheckOut:       "2026-06-03",
			Guests:         2,
			TotalAmount:    amount,
			Status:         status,
		}
		require.NoError(t, ts.db.CreateReservation(ctx, res))
	}
	seed(models.StatusConfirmed, 100)
	seed(models.StatusCancelled, 50)
	seed(models.StatusPending, 0)

	rec, env := ts.do(t, http.MethodGet, "/api/reservations/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 3, stats.TotalReservations)
	assert.Equal(t, 1, stats.Confirmed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 150.0, stats.TotalRevenue)

	// Reading twice without writes yields the same aggregate.
	_, envAgain := ts.do(t, http.MethodGet, "/api/reservations/stats", nil)
	assert.JSONEq(t, string(env.Data), string(envAgain.Data))
}

func TestCleanup_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	rec, env := ts.do(t, http.MethodPost, "/api/reservations/cleanup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = ts.do(t, http.MethodGet, "/api/reservations/cleanup", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExport_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	_, _ = ts.do(t, http.MethodPost, "/api/reservations", createBody())

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/export", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestRoomTypes_Endpoint(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	rec, env := ts.do(t, http.MethodGet, "/api/room-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog []models.RoomType
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	require.Len(t, catalog, 2)
	assert.Equal(t, "Standard Twin", catalog[0].Name)
}

func TestUsers_Endpoints(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})

	rec, env := ts.do(t, http.MethodPost, "/api/users", map[string]any{
		"name":  "Front Desk",
		"email": "desk@ivyresort.example",
		"role":  "staff",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.DashboardUser
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.True(t, user.Active)

	rec, env = ts.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), map[string]any{"role": "manager"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.DashboardUser
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.RoleManager, updated.Role)

	rec, env = ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.Count)

	rec, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Error)

	rec, _ = ts.do(t, http.MethodPost, "/api/users", map[string]any{"name": "x", "email": "x@example.com", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecurityHeadersAndOptions(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/reservations", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "reader-key", Name: "reader", Permissions: []string{"reservations:read"}},
				{Key: "full-key", Name: "dashboard"},
			},
		},
	}
	ts := newTestServer(t, cfg)

	// No key.
	rec, _ := ts.do(t, http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	healthRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(healthRec, req)
	assert.Equal(t, http.StatusOK, healthRec.Code)

	// Read key can read but not write.
	req = httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
	req.Header.Set("x-api-key", "reader-key")
	readRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(readRec, req)
	assert.Equal(t, http.StatusOK, readRec.Code)

	body, _ := json.Marshal(createBody())
	req = httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
	req.Header.Set("x-api-key", "reader-key")
	writeRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(writeRec, req)
	assert.Equal(t, http.StatusForbidden, writeRec.Code)

	// Unrestricted key can do both.
	req = httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
	req.Header.Set("x-api-key", "full-key")
	fullRec := httptest.NewRecorder()
	ts.handler.ServeHTTP(fullRec, req)
	assert.Equal(t, http.StatusCreated, fullRec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 2},
	}
	ts := newTestServer(t, cfg)

	var limited bool
	for i := 0; i < 10; i++ {
		rec, _ := ts.do(t, http.MethodGet, "/api/reservations", nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst exhausted requests should be limited")
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{})
	rec, _ := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
