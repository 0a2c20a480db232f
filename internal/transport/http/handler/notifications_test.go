package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contoso-notify/internal/application/notification"
	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/infrastructure/memqueue"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) Send(ctx context.Context, change domain.EntityChange) bool {
	return m.Called(ctx, change).Bool(0)
}

func (m *mockNotificationSvc) Receive(ctx context.Context) (*domain.Notification, bool) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(*domain.Notification)
	return n, args.Bool(1)
}

func (m *mockNotificationSvc) Drain(ctx context.Context, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, limit)
	ns, _ := args.Get(0).([]domain.Notification)
	return ns, args.Error(1)
}

func (m *mockNotificationSvc) MarkAsRead(ctx context.Context, id int64) {
	m.Called(ctx, id)
}

// --- helpers ---

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeFeed(t *testing.T, rr *httptest.ResponseRecorder) FeedEnvelope {
	t.Helper()
	var env FeedEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func sendAll(t *testing.T, svc notification.Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.True(t, svc.Send(context.Background(), domain.EntityChange{
			EntityType: "Course", EntityID: fmt.Sprint(i), Operation: domain.OperationCreate,
		}))
	}
}

// --- List tests ---

func TestList_Empty(t *testing.T) {
	h := NewNotificationHandler(notification.NewService(memqueue.New(0)))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"notifications":[]`)
		env := decodeFeed(t, rr)
		assert.True(t, env.Success)
		assert.Equal(t, 0, env.Count)
	}
}

func TestList_BatchCeiling(t *testing.T) {
	svc := notification.NewService(memqueue.New(0))
	sendAll(t, svc, 15)
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications?limit=50", nil))
	first := decodeFeed(t, rr)
	assert.Equal(t, 10, first.Count)
	assert.Len(t, first.Notifications, 10)
	assert.Equal(t, "0", first.Notifications[0].EntityID)

	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	second := decodeFeed(t, rr)
	assert.Equal(t, 5, second.Count)
	assert.Equal(t, "10", second.Notifications[0].EntityID)
}

func TestList_WireShape(t *testing.T) {
	svc := notification.NewService(memqueue.New(0))
	svc.Send(context.Background(), domain.EntityChange{EntityType: "Course", EntityID: "1050", Operation: domain.OperationCreate, DisplayName: "Chemistry"})
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))

	var raw struct {
		Success       bool                     `json:"success"`
		Notifications []map[string]interface{} `json:"notifications"`
		Count         int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw.Notifications, 1)
	n := raw.Notifications[0]
	assert.Equal(t, "Course", n["EntityType"])
	assert.Equal(t, "1050", n["EntityId"])
	assert.Equal(t, "CREATE", n["Operation"])
	assert.Equal(t, "New Course 'Chemistry' has been created", n["Message"])
	assert.Equal(t, "System", n["CreatedBy"])
	assert.Equal(t, false, n["IsRead"])
	assert.Contains(t, n, "Id")
	assert.Contains(t, n, "CreatedAt")
	assert.Contains(t, n, "ReadAt")
}

func TestList_FailureEncodedInBody(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Drain", mock.Anything, notification.MaxBatch).Return(nil, context.Canceled)
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env ResultEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Error retrieving notifications", env.Message)
	svc.AssertExpectations(t)
}

// --- MarkAsRead tests ---

func TestMarkAsRead_URLParam(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkAsRead", mock.Anything, int64(42)).Return()
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, withChiID(httptest.NewRequest(http.MethodPost, "/v1/notifications/42/read", nil), "42"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestMarkAsRead_LegacyFormValue(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkAsRead", mock.Anything, int64(7)).Return()
	h := NewNotificationHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/notifications/mark-read", strings.NewReader("id=7"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, r)

	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestMarkAsRead_InvalidID(t *testing.T) {
	svc := &mockNotificationSvc{}
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.MarkAsRead(rr, withChiID(httptest.NewRequest(http.MethodPost, "/v1/notifications/abc/read", nil), "abc"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid notification id"}`, rr.Body.String())
	svc.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

// --- Publish tests ---

func TestPublish_Queued(t *testing.T) {
	svc := &mockNotificationSvc{}
	want := domain.EntityChange{EntityType: "Student", EntityID: "7", Operation: domain.OperationDelete}
	svc.On("Send", mock.Anything, want).Return(true)
	h := NewNotificationHandler(svc)

	body := `{"entity_type":"Student","entity_id":"7","operation":"DELETE"}`
	rr := httptest.NewRecorder()
	h.Publish(rr, httptest.NewRequest(http.MethodPost, "/v1/notifications/events", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"success":true,"queued":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestPublish_NotQueuedIsStillAccepted(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return(false)
	h := NewNotificationHandler(svc)

	body := `{"entity_type":"Course","entity_id":"1","operation":"UPDATE","display_name":"Calculus"}`
	rr := httptest.NewRecorder()
	h.Publish(rr, httptest.NewRequest(http.MethodPost, "/v1/notifications/events", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"success":true,"queued":false}`, rr.Body.String())
}

func TestPublish_InvalidBody(t *testing.T) {
	cases := map[string]string{
		"not json":          "not-json",
		"unknown operation": `{"entity_type":"Course","entity_id":"1","operation":"ARCHIVE"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockNotificationSvc{}
			h := NewNotificationHandler(svc)
			rr := httptest.NewRecorder()
			h.Publish(rr, httptest.NewRequest(http.MethodPost, "/v1/notifications/events", bytes.NewBufferString(body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"success":false,"message":"invalid request body"}`, rr.Body.String())
			svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestPublish_MissingFields(t *testing.T) {
	svc := &mockNotificationSvc{}
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	h.Publish(rr, httptest.NewRequest(http.MethodPost, "/v1/notifications/events", bytes.NewBufferString(`{"operation":"CREATE"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var env ResultEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "entity_type")
	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
