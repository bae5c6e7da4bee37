package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"factcheck/factcheck-backend/internal/claimsearch"
	"factcheck/factcheck-backend/internal/queries"
)

type MockStatusReporter struct {
	mock.Mock
}

func (m *MockStatusReporter) Status(ctx context.Context) (*queries.DatabaseStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.DatabaseStatus), args.Error(1)
}

func newTestRouter(f *serviceFixture, status StatusReporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(f.service, status, nil)
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin"))
	return r
}

func post(r *gin.Engine, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_VerifyClaimSearchOnly(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)

	f.store.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.store.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.claims.On("SearchClaims", mock.Anything, "La tierra es plana").Return(verifiedResult(), nil)

	w := post(r, "/api/v1/verify", gin.H{"text": "La tierra es plana"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "claim_search_only", resp["mode_used"])
	assert.Equal(t, "verified", resp["result"])
	assert.Equal(t, "verified", resp["final_verdict"])
	assert.Equal(t, true, resp["has_official_verification"])
	assert.NotEmpty(t, resp["query_id"])
	assert.NotEmpty(t, resp["reasoning"])
	f.ai.AssertNotCalled(t, "AnalyzeClaim", mock.Anything, mock.Anything)
}

func TestHandler_VerifyHybridMode(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)

	f.store.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.store.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.claims.On("SearchClaims", mock.Anything, mock.Anything).Return(&claimsearch.Result{}, nil)
	f.ai.On("AnalyzeClaim", mock.Anything, mock.Anything).Return(analysis("probably_false", 8, "r"), nil)

	w := post(r, "/api/v1/verify/v2?mode=balanced", gin.H{"text": "El agua tiene memoria según estudios"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode_used":"combined"`)
	assert.Contains(t, w.Body.String(), `"primary_source":"generative"`)
	assert.Contains(t, w.Body.String(), `"prior_claim_search":"not_found"`)
}

func TestHandler_VerifyHybridBadParams(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)

	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/verify/v2?mode=warp", gin.H{"text": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/verify/v2?use_ai=maybe", gin.H{"text": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/verify/v2", gin.H{"text": ""}).Code)
}

func TestHandler_VerifyMobileSoftErrors(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)

	f.extractor.On("Extract", mock.Anything, "https://bad.example").Return("", errors.New("404"))

	w := post(r, "/api/v1/verify/mobile", gin.H{"url": "https://bad.example"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestHandler_PersistenceFailureIs500(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)
	f.store.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := post(r, "/api/v1/verify", gin.H{"text": "hola mundo"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_CheckGenerative(t *testing.T) {
	f := newServiceFixture()
	r := newTestRouter(f, nil)
	f.ai.On("AnalyzeClaim", mock.Anything, probeText).Return(nil, errors.New("quota")).Once()
	f.ai.On("AnalyzeClaim", mock.Anything, probeText).Return(analysis("probably_true", 5, ""), nil).Once()

	assert.Equal(t, http.StatusServiceUnavailable, post(r, "/api/v1/admin/check-ai", nil).Code)
	assert.Equal(t, http.StatusOK, post(r, "/api/v1/admin/check-ai", nil).Code)
}

func TestHandler_Status(t *testing.T) {
	f := newServiceFixture()
	reporter := new(MockStatusReporter)
	r := newTestRouter(f, reporter)

	reporter.On("Status", mock.Anything).Return(&queries.DatabaseStatus{TotalQueries: 3, QueriesLast24h: 1}, nil)
	f.ai.On("AnalyzeClaim", mock.Anything, probeText).Return(nil, errors.New("quota"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "ok", body["database"].(map[string]interface{})["status"])
	assert.Equal(t, "error", body["generative"].(map[string]interface{})["status"])
}
