package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/pkg/helpers"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

const (
	DefaultMetricsTTL        = 5 * time.Minute
	DefaultMetricsRetries    = 3
	DefaultMetricsRetryDelay = time.Second

	metricsRefreshTimeout = 2 * time.Minute
	metricsSeriesDays     = 7
	metricsDateLayout     = "2006-01-02"
)

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type MetricsOptions struct {
	TTL        time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// metricsCache holds the last good metrics. It lives as long as the service
// that owns it.
type metricsCache struct {
	mu        sync.RWMutex
	value     *models.DashboardMetrics
	fetchedAt time.Time
	ttl       time.Duration
	clockNow  func() time.Time
}

func newMetricsCache(ttl time.Duration, clockNow func() time.Time) *metricsCache {
	return &metricsCache{ttl: ttl, clockNow: clockNow}
}

// Fresh returns the cached value if it is younger than the TTL.
func (c *metricsCache) Fresh() (*models.DashboardMetrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil || c.clockNow().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.value, true
}

// Last returns the cached value regardless of age.
func (c *metricsCache) Last() *models.DashboardMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *metricsCache) Set(m *models.DashboardMetrics) {
	c.mu.Lock()
	c.value = m
	c.fetchedAt = c.clockNow()
	c.mu.Unlock()
}

func (c *metricsCache) Reset() {
	c.mu.Lock()
	c.value = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

type metricsService struct {
	vertex     vertexClient
	cache      *metricsCache
	group      singleflight.Group
	maxRetries int
	retryDelay time.Duration
	clockNow   func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewMetricsService(vertex vertexClient, opts MetricsOptions) *metricsService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultMetricsTTL
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	return &metricsService{
		vertex:     vertex,
		cache:      newMetricsCache(opts.TTL, time.Now),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		clockNow:   time.Now,
		sleep:      sleepCtx,
	}
}

// GetMetrics serves from cache while fresh, otherwise asks the model. When the
// model fails and an older value exists, the older value is returned.
//
// Concurrent misses share one refresh. The refresh runs detached from any
// single caller so one disconnecting client does not fail the others; each
// caller still stops waiting when its own ctx is done.
func (s *metricsService) GetMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	if m, ok := s.cache.Fresh(); ok {
		return m, nil
	}

	ch := s.group.DoChan("metrics", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsRefreshTimeout)
		defer cancel()
		return s.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if stale := s.cache.Last(); stale != nil {
				logger.FromContext(ctx).Warn("serving stale dashboard metrics", "error", res.Err)
				return stale, nil
			}
			return nil, res.Err
		}
		return res.Val.(*models.DashboardMetrics), nil
	}
}

// ResetCache drops cached metrics. Tests only.
func (s *metricsService) ResetCache() {
	s.cache.Reset()
}

func (s *metricsService) refresh(ctx context.Context) (*models.DashboardMetrics, error) {
	log := logger.FromContext(ctx)
	req := dto.VertexGenerateRequest{
		System:          metricsSystemPrompt(s.clockNow()),
		UserMessage:     "Generate current metrics for the AI Copilot dashboard with realistic values for the last 7 days.",
		JSONResponse:    true,
		Temperature:     helpers.Ptr(float32(0.7)),
		MaxOutputTokens: helpers.Ptr(int32(1024)),
	}

	var (
		resp dto.VertexGenerateResponse
		err  error
	)
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if serr := s.sleep(ctx, s.retryDelay); serr != nil {
				return nil, errs.NewExternalServiceError("vertex", "metrics request cancelled", true, serr)
			}
		}
		resp, err = s.vertex.GenerateContent(ctx, req)
		if err == nil {
			break
		}
		log.Warn("metrics generation failed", "attempt", attempt+1, "error", err)
		if permanent(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, errs.NewExternalServiceError("vertex", "failed to generate dashboard metrics", true, err)
	}

	m, err := parseMetrics(resp.Text)
	if err != nil {
		return nil, errs.NewExternalServiceError("vertex", "invalid metrics format received from model", false, err)
	}
	s.cache.Set(m)
	return m, nil
}

var requiredMetricFields = []string{
	"totalUsers", "activeUsers", "totalConversations", "avgResponseTime",
	"dailyActiveUsers", "conversationVolume", "avgSessionDuration",
	"responseRate", "avgLatency", "errorRate",
}

func parseMetrics(text string) (*models.DashboardMetrics, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	for _, f := range requiredMetricFields {
		if _, ok := fields[f]; !ok {
			return nil, fmt.Errorf("missing field %q", f)
		}
	}

	var m models.DashboardMetrics
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	if err := validateSeries("dailyActiveUsers", m.DailyActiveUsers); err != nil {
		return nil, err
	}
	if err := validateSeries("conversationVolume", m.ConversationVolume); err != nil {
		return nil, err
	}
	return &m, nil
}

// validateSeries requires seven points with strictly increasing dates.
func validateSeries(name string, series []models.DailyCount) error {
	if len(series) != metricsSeriesDays {
		return fmt.Errorf("%s: expected %d points, got %d", name, metricsSeriesDays, len(series))
	}
	var prev time.Time
	for i, p := range series {
		d, err := time.Parse(metricsDateLayout, p.Date)
		if err != nil {
			return fmt.Errorf("%s[%d]: bad date %q", name, i, p.Date)
		}
		if i > 0 && !d.After(prev) {
			return fmt.Errorf("%s[%d]: dates not increasing", name, i)
		}
		prev = d
	}
	return nil
}

func metricsSystemPrompt(now time.Time) string {
	return fmt.Sprintf(`You are an AI analytics assistant. Generate realistic metrics for an AI Copilot dashboard.
Today is %s. Return only a JSON object with this structure:
{
  "totalUsers": number (1000-10000),
  "activeUsers": number (500-5000),
  "totalConversations": number (5000-50000),
  "avgResponseTime": number (100-500),
  "dailyActiveUsers": [{"date": "YYYY-MM-DD", "count": number (100-1000)}] (the last 7 days, oldest first),
  "conversationVolume": [{"date": "YYYY-MM-DD", "count": number (500-5000)}] (the last 7 days, oldest first),
  "avgSessionDuration": number (5-30),
  "responseRate": number (95-100),
  "avgLatency": number (50-200),
  "errorRate": number (0-2)
}`, now.Format(metricsDateLayout))
}

// permanent reports errors that a retry cannot fix.
func permanent(err error) bool {
	var ese *errs.ExternalServiceError
	return errors.As(err, &ese) && !ese.Transient
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
