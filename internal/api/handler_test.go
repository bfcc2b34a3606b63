package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/community-console/internal/advert"
	"github.com/kurihiro0119/community-console/internal/domain"
	apperrors "github.com/kurihiro0119/community-console/internal/errors"
	"github.com/kurihiro0119/community-console/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	runs []*domain.BatchRun
}

func (f *fakeStore) SaveBatchRun(context.Context, *domain.BatchRun) error { return nil }

func (f *fakeStore) SaveTarget(context.Context, string, domain.SubmissionTarget) error { return nil }

func (f *fakeStore) GetBatchRun(_ context.Context, id string) (*domain.BatchRun, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("batch run %s", id))
}

func (f *fakeStore) ListBatchRuns(_ context.Context, limit int) ([]*domain.BatchRun, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }

func (f *fakeStore) Close() error { return nil }

type fakeQuoter struct {
	err error
}

func (f *fakeQuoter) Quote(_ context.Context, durationDays int, ids []int64) (advert.Quote, error) {
	if f.err != nil {
		return advert.Quote{}, f.err
	}
	communities := make([]domain.Community, len(ids))
	for i, id := range ids {
		communities[i] = domain.Community{CommunityID: id, TotalMembers: 10}
	}
	return advert.NewQuote(durationDays, communities, 5), nil
}

func sampleRun() *domain.BatchRun {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	return &domain.BatchRun{
		ID:        "run-1",
		Kind:      domain.BatchKindAdvertisement,
		CreatedAt: at,
		UpdatedAt: at,
		Targets: []domain.SubmissionTarget{
			{TargetID: 1, DisplayName: "A", Status: domain.TargetSucceeded},
			{TargetID: 2, DisplayName: "B", Status: domain.TargetFailed, Message: "Insufficient balance"},
		},
	}
}

func newRouter(quoter Quoter) *gin.Engine {
	store := &fakeStore{runs: []*domain.BatchRun{sampleRun()}}
	return SetupRoutes(NewHandler(store, quoter), logger.Discard())
}

func do(t *testing.T, router http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error object: %v", body)
	return e["code"].(string)
}

func TestHealthCheck(t *testing.T) {
	code, body := do(t, newRouter(nil), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestBatches(t *testing.T) {
	router := newRouter(nil)

	code, body := do(t, router, http.MethodGet, "/api/v1/batches?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	require.Equal(t, "run-1", first["id"])
	require.Equal(t, "partial_success", first["outcome"])
	require.Equal(t, 1.0, first["summary"].(map[string]any)["failed"])

	code, body = do(t, router, http.MethodGet, "/api/v1/batches/run-1", nil)
	require.Equal(t, http.StatusOK, code)
	targets := body["data"].(map[string]any)["targets"].([]any)
	require.Equal(t, "Insufficient balance", targets[1].(map[string]any)["message"])

	code, body = do(t, router, http.MethodGet, "/api/v1/batches/nope", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestPreviewAllocation(t *testing.T) {
	router := newRouter(nil)

	tests := []struct {
		name      string
		body      map[string]any
		status    int
		primary   float64
		secondary float64
		message   string
		code      string
	}{
		{
			name:   "secondary edit",
			body:   map[string]any{"primary": 70, "secondary": 30, "side": "secondary", "value": "45"},
			status: http.StatusOK, primary: 55, secondary: 45,
		},
		{
			name:   "clamped above 100",
			body:   map[string]any{"primary": 70, "secondary": 30, "side": "primary", "value": "150"},
			status: http.StatusOK, primary: 100, secondary: 0,
		},
		{
			name:   "empty with clamp policy",
			body:   map[string]any{"primary": 70, "secondary": 30, "side": "primary", "value": ""},
			status: http.StatusOK, primary: 0, secondary: 100,
		},
		{
			name:   "empty with reject policy keeps pair",
			body:   map[string]any{"primary": 70, "secondary": 30, "side": "primary", "value": "", "policy": "reject"},
			status: http.StatusOK, primary: 70, secondary: 30, message: "value is required",
		},
		{
			name:   "unbalanced pair with reject policy",
			body:   map[string]any{"primary": 70, "secondary": 40, "side": "primary", "value": "", "policy": "reject"},
			status: http.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:   "unbalanced pair",
			body:   map[string]any{"primary": 10, "secondary": 10, "side": "primary", "value": "20"},
			status: http.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:   "not a number",
			body:   map[string]any{"primary": 70, "secondary": 30, "side": "primary", "value": "abc"},
			status: http.StatusBadRequest, code: "VALIDATION_FAILED",
		},
		{
			name:   "unknown side",
			body:   map[string]any{"side": "left", "value": "10"},
			status: http.StatusBadRequest, code: "VALIDATION_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, router, http.MethodPost, "/api/v1/allocations", tt.body)
			require.Equal(t, tt.status, code)
			if tt.code != "" {
				require.Equal(t, tt.code, errorCode(t, body))
				return
			}
			data := body["data"].(map[string]any)
			pair := data["pair"].(map[string]any)
			require.Equal(t, tt.primary, pair["primary"])
			require.Equal(t, tt.secondary, pair["secondary"])
			if tt.body["side"] == "primary" {
				require.Equal(t, tt.primary, data["value"])
			} else {
				require.Equal(t, tt.secondary, data["value"])
			}
			wantPolicy := "clamp"
			if tt.body["policy"] == "reject" {
				wantPolicy = "reject"
			}
			require.Equal(t, wantPolicy, data["policy"])
			if tt.message != "" {
				require.Equal(t, tt.message, data["message"])
				require.Equal(t, false, data["committable"])
			}
		})
	}
}

func TestQuoteAdvertisement(t *testing.T) {
	code, body := do(t, newRouter(nil), http.MethodPost, "/api/v1/ads/quote", map[string]any{"communityIds": []int64{1}, "uploadDuration": 3})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	router := newRouter(&fakeQuoter{})
	code, body = do(t, router, http.MethodPost, "/api/v1/ads/quote", map[string]any{"communityIds": []int64{1, 2}, "uploadDuration": 3})
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	require.InDelta(t, 6.0, data["totalFee"].(float64), 1e-9)
	require.Equal(t, false, data["sufficient"])

	code, body = do(t, router, http.MethodPost, "/api/v1/ads/quote", map[string]any{"communityIds": []int64{}, "uploadDuration": 31})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	router = newRouter(&fakeQuoter{err: &apperrors.RemoteError{Endpoint: "/user/wallet", Message: "Token expired"}})
	code, body = do(t, router, http.MethodPost, "/api/v1/ads/quote", map[string]any{"communityIds": []int64{1}, "uploadDuration": 3})
	require.Equal(t, http.StatusBadGateway, code)
	require.Equal(t, "REMOTE_REJECTED", errorCode(t, body))
}

func TestListLocations(t *testing.T) {
	code, body := do(t, newRouter(nil), http.MethodGet, "/api/v1/locations", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["data"].([]any), 4)
}
