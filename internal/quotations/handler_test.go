package quotations

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	svc, _, _ := testService(repo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Route("/api/quotations", NewHandler(logger, svc).MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateQuotationEndpoint(t *testing.T) {
	router := testRouter(t, newFakeRepo())

	rec := postJSON(t, router, "/api/quotations", CreateQuotationRequest{
		SurveyID: 42,
		Discount: 100,
		Advance:  200,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var q Quotation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	require.Equal(t, 840.0, q.FinalAmount)
	require.Contains(t, q.DocNumber, "QTN-")
}

func TestCreateQuotationNoBandReturns422(t *testing.T) {
	repo := newFakeRepo()
	svc, surveySrc, _ := testService(repo)
	surveySrc.byID[42].DestinationCity = "Reykjavik"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Route("/api/quotations", NewHandler(logger, svc).MountRoutes)

	rec := postJSON(t, r, "/api/quotations", CreateQuotationRequest{SurveyID: 42})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Contains(t, problem["detail"], "Reykjavik")
	require.Contains(t, problem["detail"], "12.40")
}

func TestCreateQuotationAcceptsStringAmounts(t *testing.T) {
	router := testRouter(t, newFakeRepo())

	// User-entered amounts may arrive as strings; malformed ones degrade
	// to zero instead of rejecting the request.
	rec := postJSON(t, router, "/api/quotations", map[string]any{
		"survey_id": 42,
		"discount":  "100",
		"advance":   "not a number",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var q Quotation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	require.Equal(t, 100.0, q.Discount)
	require.Equal(t, 840.0, q.FinalAmount)
	require.Equal(t, 0.0, q.Advance)
	require.Equal(t, 840.0, q.Balance)
}

func TestCreateQuotationValidationReturns400(t *testing.T) {
	router := testRouter(t, newFakeRepo())

	rec := postJSON(t, router, "/api/quotations", map[string]any{"discount": 10})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuotationNotFound(t *testing.T) {
	router := testRouter(t, newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/quotations/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
