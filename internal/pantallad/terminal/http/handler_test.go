package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/ratelimit"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, name string, screenType v1alpha1.ScreenType, branchID uuid.UUID) (*terminal.Terminal, error) {
	args := m.Called(ctx, name, screenType, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal.Terminal), args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*terminal.Terminal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal.Terminal), args.Error(1)
}

func (m *mockService) GetByName(ctx context.Context, name string) (*terminal.Terminal, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal.Terminal), args.Error(1)
}

func (m *mockService) List(ctx context.Context, branchID *uuid.UUID) ([]*terminal.Terminal, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*terminal.Terminal), args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, upd terminal.Update) (*terminal.Terminal, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*terminal.Terminal), args.Error(1)
}

func (m *mockService) AssignArea(ctx context.Context, id, areaID uuid.UUID) error {
	args := m.Called(ctx, id, areaID)
	return args.Error(0)
}

func (m *mockService) GetScreen(ctx context.Context, id uuid.UUID) (*v1alpha1.ScreenResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1alpha1.ScreenResponse), args.Error(1)
}

type mockRateLimit struct {
	mock.Mock
}

func (m *mockRateLimit) Allow(ctx context.Context, key ratelimit.LimitKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockRateLimit) GetLimit(limitType string) ratelimit.Limit {
	args := m.Called(limitType)
	return args.Get(0).(ratelimit.Limit)
}

func (m *mockRateLimit) RegisterLimit(limitType string, limit ratelimit.Limit) error {
	args := m.Called(limitType, limit)
	return args.Error(0)
}

func (m *mockRateLimit) Reset(ctx context.Context, key ratelimit.LimitKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) (*Handler, *mockService, *mockRateLimit) {
	t.Helper()
	service := new(mockService)
	limiter := new(mockRateLimit)
	logger := testLogger()
	return NewHandler(service, limiter, NewHub(logger), logger), service, limiter
}

func screenResponse() *v1alpha1.ScreenResponse {
	serverTime := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return &v1alpha1.ScreenResponse{
		Config: v1alpha1.TerminalConfig{
			InternalName: "LOBBY-NORTE-1",
			ScreenType:   v1alpha1.ScreenTypeSalon,
			Theme:        "dark",
		},
		Data: v1alpha1.ScreenData{
			Agenda: &v1alpha1.AgendaPayload{
				DataType: v1alpha1.DataTypeAgenda,
				Events:   []v1alpha1.ScheduledEvent{},
			},
		},
		ServerTime: &serverTime,
	}
}

func TestGetScreen_ByUUID(t *testing.T) {
	handler, service, limiter := newTestHandler(t)
	id := uuid.New()

	limiter.On("Allow", mock.Anything, mock.Anything).Return(nil)
	service.On("GetScreen", mock.Anything, id).Return(screenResponse(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pantalla/"+id.String(), nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "config")
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "server_time")

	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal(body["config"], &cfg))
	assert.Equal(t, "SALON", cfg["tipo_pantalla"])
	assert.Equal(t, "LOBBY-NORTE-1", cfg["nombre_interno"])

	service.AssertExpectations(t)
}

func TestGetScreen_ByInternalName(t *testing.T) {
	handler, service, limiter := newTestHandler(t)
	id := uuid.New()

	limiter.On("Allow", mock.Anything, mock.Anything).Return(nil)
	service.On("GetByName", mock.Anything, "LOBBY-NORTE-1").
		Return(&terminal.Terminal{ID: id, InternalName: "LOBBY-NORTE-1"}, nil)
	service.On("GetScreen", mock.Anything, id).Return(screenResponse(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pantalla/LOBBY-NORTE-1", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestGetScreen_UnknownName(t *testing.T) {
	handler, service, limiter := newTestHandler(t)

	limiter.On("Allow", mock.Anything, mock.Anything).Return(nil)
	service.On("GetByName", mock.Anything, "ghost").
		Return(nil, werrors.NewError("NOT_FOUND", "terminal not found", "TerminalService.GetByName", werrors.ErrNotFound))

	req := httptest.NewRequest(http.MethodGet, "/api/pantalla/ghost", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": {"code": "NOT_FOUND", "message": "terminal not found"}}`, rec.Body.String())
}

func TestGetScreen_RateLimited(t *testing.T) {
	handler, service, limiter := newTestHandler(t)
	id := uuid.New()

	limiter.On("Allow", mock.Anything, mock.Anything).Return(ratelimit.ErrLimitExceeded)
	limiter.On("GetLimit", RateLimitScreenFetch).
		Return(ratelimit.Limit{Rate: 60, Period: time.Minute, BurstSize: 20})

	req := httptest.NewRequest(http.MethodGet, "/api/pantalla/"+id.String(), nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	service.AssertNotCalled(t, "GetScreen", mock.Anything, mock.Anything)
}

func TestGetScreen_RateLimitStoreOutageFailsOpen(t *testing.T) {
	handler, service, limiter := newTestHandler(t)
	id := uuid.New()

	limiter.On("Allow", mock.Anything, mock.Anything).Return(ratelimit.ErrStoreError)
	service.On("GetScreen", mock.Anything, id).Return(screenResponse(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pantalla/"+id.String(), nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestRegisterTerminal(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	branchID := uuid.New()

	created := &terminal.Terminal{
		ID:           uuid.New(),
		InternalName: "LOBBY-NORTE-1",
		ScreenType:   v1alpha1.ScreenTypeSalon,
		Theme:        "dark",
		BranchID:     branchID,
		Version:      1,
	}
	service.On("Register", mock.Anything, "LOBBY-NORTE-1", v1alpha1.ScreenTypeSalon, branchID).
		Return(created, nil)

	body, err := json.Marshal(map[string]interface{}{
		"name":       "LOBBY-NORTE-1",
		"screenType": "SALON",
		"branchId":   branchID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/terminals/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp v1alpha1.Terminal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "LOBBY-NORTE-1", resp.ObjectMeta.Name)
	assert.Equal(t, v1alpha1.ScreenTypeSalon, resp.Spec.ScreenType)
	service.AssertExpectations(t)
}

func TestGetTerminal_InvalidID(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/terminals/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignArea(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	id := uuid.New()
	areaID := uuid.New()

	service.On("AssignArea", mock.Anything, id, areaID).Return(nil)

	body, err := json.Marshal(map[string]interface{}{"areaId": areaID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1alpha1/terminals/"+id.String()+"/area", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	service.AssertExpectations(t)
}

func TestUpdateTerminal(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	id := uuid.New()
	theme := "light"

	service.On("Update", mock.Anything, id, terminal.Update{
		Theme:       &theme,
		Screensaver: []string{"idle/a.png"},
	}).Return(&terminal.Terminal{
		ID:           id,
		InternalName: "LOBBY-NORTE-1",
		ScreenType:   v1alpha1.ScreenTypeDirectory,
		Theme:        theme,
		Screensaver:  []string{"idle/a.png"},
		Version:      2,
	}, nil)

	body, err := json.Marshal(map[string]interface{}{
		"theme":       theme,
		"screensaver": []string{"idle/a.png"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1alpha1/terminals/"+id.String(), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.Terminal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "light", resp.Spec.Theme)
	assert.Equal(t, 2, resp.Status.Version)
	service.AssertExpectations(t)
}

func TestNudgeRefresh(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/terminals/"+id.String()+"/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
