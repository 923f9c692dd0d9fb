package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	scoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradeflow",
		Subsystem: "scoring",
		Name:      "request_duration_seconds",
		Help:      "Duration of semantic scoring requests",
	}, []string{"embedding"})

	scoringFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeflow",
		Subsystem: "scoring",
		Name:      "request_failures_total",
		Help:      "Number of failed semantic scoring requests",
	}, []string{"embedding"})
)

// ErrUnavailable indicates the scoring service could not produce a score,
// either because the request failed or because it returned a non-success
// status. Callers treat this as fatal to the whole grading attempt and rely
// on the queue retry budget.
var ErrUnavailable = errors.New("scoring service unavailable")

// Config defines options for the scoring client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client calls the semantic scoring endpoint. Each course routes to its own
// embedding model via the URL suffix.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

type scoreRequest struct {
	MarkingScheme   string `json:"markingScheme"`
	StudentResponse string `json:"studentResponse"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// New builds a scoring client from the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("scoring base url is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		tracer:     otel.Tracer("github.com/arka-labs/gradeflow-api/pkg/scoring"),
		logger:     cfg.Logger.With().Str("component", "scoring_client").Logger(),
	}, nil
}

// Score posts the marking scheme and student response to the course's
// embedding endpoint and returns the continuous similarity score. The call
// carries an explicit deadline so a stalled service cannot hold a worker slot
// indefinitely.
func (c *Client) Score(parent context.Context, embeddingURL, markingScheme, studentResponse string) (float64, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "scoring.score", trace.WithAttributes(
		attribute.String("scoring.embedding_url", embeddingURL),
	))
	defer span.End()

	body, err := json.Marshal(scoreRequest{MarkingScheme: markingScheme, StudentResponse: studentResponse})
	if err != nil {
		return 0, fmt.Errorf("encode scoring request: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(embeddingURL, "/")
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build scoring request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := c.httpClient.Do(request)
	scoringDuration.WithLabelValues(embeddingURL).Observe(time.Since(start).Seconds())
	if err != nil {
		scoringFailures.WithLabelValues(embeddingURL).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "request_failed")
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		scoringFailures.WithLabelValues(embeddingURL).Inc()
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 256))
		err := fmt.Errorf("%w: status %d: %s", ErrUnavailable, response.StatusCode, strings.TrimSpace(string(snippet)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected_status")
		return 0, err
	}

	var payload scoreResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		scoringFailures.WithLabelValues(embeddingURL).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode_failed")
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	span.SetAttributes(attribute.Float64("scoring.score", payload.Score))

	return payload.Score, nil
}
