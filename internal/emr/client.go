package emr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/pkg/circuitbreaker"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

// ErrUnavailable covers everything that justifies falling back to the mock
// store: transport failures, DNS errors, remote 5xx and an open breaker.
// Remote 4xx responses are not wrapped in it; those surface to the caller.
var ErrUnavailable = errors.New("remote EMR API unavailable")

type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client talks to the external EMR/AI API. Reads go through a short-lived
// TTL cache; every call is guarded by a circuit breaker so a dead remote
// degrades to ErrUnavailable quickly instead of burning the socket timeout
// on each request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
	cache   *gocache.Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

const (
	cacheKeyPatients = "patients"
	cacheKeyPatient  = "patient:%d"
)

func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.New(circuitbreaker.Settings{
			Name:             "emr-api",
			FailureThreshold: 3,
			Cooldown:         15 * time.Second,
		}),
		cache:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics: m,
		logger:  logger.With().Str("component", "emr_client").Logger(),
	}
}

func (c *Client) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	if cached, ok := c.cache.Get(cacheKeyPatients); ok {
		c.metrics.CacheHits.Inc()
		return cached.([]*model.Patient), nil
	}

	var patients []*model.Patient
	if err := c.do(ctx, "list_patients", http.MethodGet, "/v1/patients", nil, &patients); err != nil {
		return nil, err
	}

	c.cache.SetDefault(cacheKeyPatients, patients)
	return patients, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	key := fmt.Sprintf(cacheKeyPatient, id)
	if cached, ok := c.cache.Get(key); ok {
		c.metrics.CacheHits.Inc()
		return cached.(*model.Patient), nil
	}

	var patient model.Patient
	if err := c.do(ctx, "get_patient", http.MethodGet, fmt.Sprintf("/v1/patients/%d", id), nil, &patient); err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, &patient)
	return &patient, nil
}

// CreatePatient forwards the raw prompt to the remote AI patient endpoint.
func (c *Client) CreatePatient(ctx context.Context, prompt string) (*model.Patient, error) {
	body := map[string]string{"prompt": prompt}

	var patient model.Patient
	if err := c.do(ctx, "create_patient", http.MethodPost, "/v1/ai/patients", body, &patient); err != nil {
		return nil, err
	}

	c.cache.Delete(cacheKeyPatients)
	return &patient, nil
}

func (c *Client) CreateEncounter(ctx context.Context, patientID int64, prompt string) (*model.Encounter, error) {
	body := map[string]interface{}{
		"prompt":     prompt,
		"patient_id": patientID,
	}

	var encounter model.Encounter
	if err := c.do(ctx, "create_encounter", http.MethodPost, "/v1/ai/encounters", body, &encounter); err != nil {
		return nil, err
	}
	return &encounter, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	start := time.Now()

	// A 4xx rejection is a well-formed answer from the remote, not a sign
	// it is down: surface it without counting a breaker failure.
	var rejection *apperrors.AppError
	err := c.cb.Execute(func() error {
		err := c.roundTrip(ctx, method, path, body, out)
		if errors.As(err, &rejection) {
			return nil
		}
		return err
	})
	c.metrics.RemoteLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case rejection != nil:
		c.metrics.RemoteCalls.WithLabelValues(operation, "rejected").Inc()
		return rejection
	case err == nil:
		c.metrics.RemoteCalls.WithLabelValues(operation, "ok").Inc()
		return nil
	case errors.Is(err, circuitbreaker.ErrOpen):
		c.metrics.RemoteCalls.WithLabelValues(operation, "breaker_open").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		c.metrics.RemoteCalls.WithLabelValues(operation, "error").Inc()
		return err
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal(err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("remote EMR call failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("remote EMR server error")
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return apperrors.Upstream(resp.StatusCode, readErrorMessage(resp.Body), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return "unreadable error body"
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "no error detail"
}
