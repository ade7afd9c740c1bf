package emr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewClient(Config{
		BaseURL:  baseURL,
		Token:    "test-token",
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	}, m, zerolog.Nop())
}

func TestClient_GetPatientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/patients/1", r.URL.Path)
		w.Write([]byte(`{"id":1,"name":"Ada Okafor","allergies":["penicillin"]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	patient, err := client.GetPatient(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "Ada Okafor", patient.Name)
	assert.Equal(t, []string{"penicillin"}, patient.Allergies)
}

func TestClient_GetPatientServedFromCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"id":1,"name":"Ada"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.GetPatient(context.Background(), 1)
	require.NoError(t, err)
	_, err = client.GetPatient(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestClient_CreatePatientPostsPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/ai/patients", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":9,"name":"John Smith","age":42}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	patient, err := client.CreatePatient(context.Background(), "Create a patient named John Smith aged 42")

	require.NoError(t, err)
	assert.Equal(t, int64(9), patient.ID)
	assert.Equal(t, 42, patient.Age)
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListPatients(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(t, srv.URL)
	_, err := client.ListPatients(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ClientErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"prompt is empty"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.CreatePatient(context.Background(), "")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUpstream, appErr.Code)
	assert.Contains(t, appErr.Message, "400")
	assert.Contains(t, appErr.Message, "prompt is empty")
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for i := 0; i < 5; i++ {
		_, err := client.ListPatients(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// The breaker trips after three consecutive failures; later calls never
	// reach the server.
	assert.Equal(t, 3, calls)
}

func TestClient_ClientErrorDoesNotTripBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for i := 0; i < 5; i++ {
		_, err := client.CreatePatient(context.Background(), "bad prompt")
		var appErr *apperrors.AppError
		assert.ErrorAs(t, err, &appErr)
	}

	assert.Equal(t, 5, calls)
}
