package service_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/red-crowdfund/pkg/app/errors"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund/service"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund/service/mocks"
)

var (
	investor = common.HexToAddress("0x821aEa9a577a9b44299B9c15c88cf3087F3b5544")
	angel    = common.HexToAddress("0x0d1d4e623D10F9FBA5Db95830F7d3839406C6AF2")
)

func allowAll(next http.Handler) http.Handler { return next }

func newTestServer(svc service.Service, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	service.RegisterRoutes(r, svc, admin, zap.NewNop())
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func TestHTTP_Status(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().Status(mock.Anything).Return(&service.Status{Phase: "early_birds", Symbol: "RED", IsOpen: true}, nil)

	rec := doRequest(t, newTestServer(svc, nil), http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got service.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Phase != "early_birds" || got.Symbol != "RED" || !got.IsOpen {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestHTTP_Holder_InvalidAddress_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)

	rec := doRequest(t, newTestServer(svc, nil), http.MethodGet, "/holders/0x1234", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != "invalid address" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestHTTP_Holder(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().Holder(mock.Anything, investor).Return(&service.Holder{Address: investor, Balance: "5500"}, nil)

	rec := doRequest(t, newTestServer(svc, nil), http.MethodGet, "/holders/"+investor.Hex(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got service.Holder
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Balance != "5500" || got.Address != investor {
		t.Fatalf("unexpected holder %+v", got)
	}
}

func TestHTTP_Allowance_ServiceErrorCategories(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", apperrors.ConflictError(nil, "too early"), http.StatusConflict},
		{"locked", &apperrors.ServiceError{Category: apperrors.CategoryLocked, Message: "locked"}, http.StatusLocked},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := mocks.NewService(t)
		svc.EXPECT().Allowance(mock.Anything, investor, angel).Return(nil, tt.err)

		path := fmt.Sprintf("/allowances/%s/%s", investor.Hex(), angel.Hex())
		rec := doRequest(t, newTestServer(svc, nil), http.MethodGet, path, "")
		if rec.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.status, rec.Code)
		}
		if got := decodeError(t, rec); got.Code != tt.status {
			t.Errorf("%s: expected code %d, got %d", tt.name, tt.status, got.Code)
		}
	}
}

func TestHTTP_AdminRoutes_NotRegisteredWithoutAuth(t *testing.T) {
	svc := mocks.NewService(t)

	rec := doRequest(t, newTestServer(svc, nil), http.MethodPost, "/admin/snapshot", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHTTP_AdminRoutes_UseMiddleware(t *testing.T) {
	svc := mocks.NewService(t)
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	rec := doRequest(t, newTestServer(svc, deny), http.MethodPost, "/admin/mine", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHTTP_AdminSnapshotAndRevert(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().Snapshot(mock.Anything).Return(&service.SnapshotResponse{ID: 3}, nil)
	svc.EXPECT().Revert(mock.Anything, uint64(3)).Return(&service.RevertResponse{Reverted: true}, nil).Once()
	svc.EXPECT().Revert(mock.Anything, uint64(9)).Return(&service.RevertResponse{Reverted: false}, nil).Once()
	h := newTestServer(svc, allowAll)

	rec := doRequest(t, h, http.MethodPost, "/admin/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var snap service.SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil || snap.ID != 3 {
		t.Fatalf("unexpected snapshot response %s (%v)", rec.Body.String(), err)
	}

	rec = doRequest(t, h, http.MethodPost, "/admin/revert", `{"id":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/admin/revert", `{"id":9}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/admin/revert", `{"id":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHTTP_AdminIncreaseTime(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().IncreaseTime(mock.Anything, 90*24*time.Hour).
		Return(&service.TimeResponse{OffsetSeconds: 7776000, ChainTime: 1523181600}, nil)
	h := newTestServer(svc, allowAll)

	rec := doRequest(t, h, http.MethodPost, "/admin/increase-time", `{"seconds":7776000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/admin/increase-time", `{"seconds":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// 20e9 seconds does not fit in a time.Duration
	rec = doRequest(t, h, http.MethodPost, "/admin/increase-time", `{"seconds":20000000000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/admin/increase-time", `{invalid`)
	if got := decodeError(t, rec); got.Error != "invalid JSON" {
		t.Fatalf("expected error %q, got %q", "invalid JSON", got.Error)
	}
}
