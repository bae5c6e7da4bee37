package queries

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(newTestService(repo), nil)
	h.RegisterRoutes(r.Group("/api/v1"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin"))
	return r
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_History(t *testing.T) {
	mockRepo := new(MockRepository)
	r := newTestRouter(mockRepo)

	user := "u1"
	mockRepo.On("List", mock.Anything, Filter{UserID: &user}, 0, 10).
		Return([]Query{{ID: uuid.New(), Text: "t", Result: "verified"}}, int64(1), nil)

	w := serve(r, http.MethodGet, "/api/v1/history?user_id=u1")

	require.Equal(t, http.StatusOK, w.Code)
	var page HistoryPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 10, page.Limit)
	mockRepo.AssertExpectations(t)
}

func TestHandler_HistoryBadLimit(t *testing.T) {
	r := newTestRouter(new(MockRepository))

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/history?limit=500").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/history?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/history?offset=-2").Code)
}

func TestHandler_GetQuery(t *testing.T) {
	mockRepo := new(MockRepository)
	r := newTestRouter(mockRepo)

	found := uuid.New()
	missing := uuid.New()
	mockRepo.On("GetByID", mock.Anything, found).Return(&Query{ID: found, Text: "t", Result: "mixed"}, nil)
	mockRepo.On("GetByID", mock.Anything, missing).Return(nil, ErrNotFound)

	w := serve(r, http.MethodGet, "/api/v1/queries/"+found.String())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":"mixed"`)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/queries/"+missing.String()).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/queries/not-a-uuid").Code)
}

func TestHandler_StatsV2(t *testing.T) {
	mockRepo := new(MockRepository)
	r := newTestRouter(mockRepo)

	mockRepo.On("AggregateStats", mock.Anything, true).Return(&Stats{
		TotalQueries: 5,
		ResultCounts: map[string]int64{"verified": 5},
	}, nil)

	w := serve(r, http.MethodGet, "/api/v1/stats/v2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result_distribution":{"verified":5}`)
}

func TestHandler_Purge(t *testing.T) {
	mockRepo := new(MockRepository)
	r := newTestRouter(mockRepo)

	mockRepo.On("DeleteOlderThan", mock.Anything, fixedNow.AddDate(0, 0, -7)).Return(int64(2), nil)

	w := serve(r, http.MethodDelete, "/api/v1/admin/purge?days=7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2,"days":7}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodDelete, "/api/v1/admin/purge?days=0").Code)
}

func TestHandler_Export(t *testing.T) {
	mockRepo := new(MockRepository)
	r := newTestRouter(mockRepo)

	mockRepo.On("List", mock.Anything, Filter{}, 0, exportLimit).
		Return([]Query{{ID: uuid.New(), Text: "t", CreatedAt: time.Now()}}, int64(1), nil)

	w := serve(r, http.MethodGet, "/api/v1/history/export?format=csv")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "verification-history-20250601-120000.csv")

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/history/export?format=doc").Code)
}
