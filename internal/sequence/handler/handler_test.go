package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/jwttoken"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/logger"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/middleware"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	sequenceservice "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/service"
	counterstore "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/store/counter"
)

func newRouter(t *testing.T) (chi.Router, string) {
	t.Helper()

	svc := sequenceservice.New(counterstore.NewMemory())
	jwtService := jwttoken.NewJWTService("test-signing-key", "b-sphere", "b-sphere-admin")

	router := chi.NewRouter()
	New(svc, logger.New(), nil, jwtService).Register(router)

	token, err := jwtService.GenerateAccessToken("admin-1", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return router, token
}

func do(router chi.Router, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNext_RequiresToken(t *testing.T) {
	router, _ := newRouter(t)
	rec := do(router, http.MethodPost, "/api/v1/admin/control-numbers/business_permit", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNext_IssuesSequentialNumbers(t *testing.T) {
	router, token := newRouter(t)
	path := "/api/v1/admin/control-numbers/business_permit"

	for i, want := range []string{"000-01", "000-02", "000-03"} {
		rec := do(router, http.MethodPost, path, token)
		require.Equal(t, http.StatusCreated, rec.Code, "issue %d: %s", i+1, rec.Body.String())

		var body struct {
			DocumentType  string `json:"documentType"`
			ControlNumber string `json:"controlNumber"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, string(models.DocumentTypeBusinessPermit), body.DocumentType)
		assert.Equal(t, want, body.ControlNumber)
	}
}

func TestNext_UnknownDocumentType(t *testing.T) {
	router, token := newRouter(t)
	rec := do(router, http.MethodPost, "/api/v1/admin/control-numbers/passport", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrent_ReflectsIssuance(t *testing.T) {
	router, token := newRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/admin/control-numbers/ctc", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DocumentType    string `json:"documentType"`
		Count           int64  `json:"count"`
		LastGeneratedID string `json:"lastGeneratedId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ctc", body.DocumentType)
	assert.Zero(t, body.Count)

	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/v1/admin/control-numbers/ctc", token).Code)

	rec = do(router, http.MethodGet, "/api/v1/admin/control-numbers/ctc", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Count)
	assert.Equal(t, "0001-0001", body.LastGeneratedID)
}
