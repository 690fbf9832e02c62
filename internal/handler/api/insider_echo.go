package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	models "InsiderPulse/internal/domain/models"
	domrepo "InsiderPulse/internal/domain/repository"
	icache "InsiderPulse/internal/service/cache"
	"InsiderPulse/internal/service/metrics"
	"InsiderPulse/internal/service/ratelimit"
	"InsiderPulse/internal/usecase"
	xhttp "InsiderPulse/pkg/http"
	xlogger "InsiderPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Options tunes the cross-cutting behavior of the handler.
type Options struct {
	Cache icache.BytesCache
	// CacheTTL applies to responses pinned to an explicit asOf date.
	CacheTTL time.Duration
	// CurrentTTL applies to responses computed as of now.
	CurrentTTL time.Duration
	Limiter    *ratelimit.Limiter
	Now        func() time.Time
	Health     func(ctx context.Context) error
}

// InsiderEchoHandler serves the sentiment, ticker and dashboard endpoints.
type InsiderEchoHandler struct {
	logger    *xlogger.Logger
	sentiment *usecase.SentimentUseCase
	ticker    *usecase.TickerUseCase
	dashboard *usecase.DashboardUseCase
	opts      Options
}

func NewInsiderEchoHandler(
	logger *xlogger.Logger,
	sentiment *usecase.SentimentUseCase,
	ticker *usecase.TickerUseCase,
	dashboard *usecase.DashboardUseCase,
	opts Options,
) *InsiderEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &InsiderEchoHandler{
		logger:    logger,
		sentiment: sentiment,
		ticker:    ticker,
		dashboard: dashboard,
		opts:      opts,
	}
}

func (h *InsiderEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1", h.rateLimit)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/sentiment/current", h.CurrentSentiment)
	g.GET("/sentiment/breadth", h.Breadth)
	g.GET("/sentiment/top-movers", h.TopMovers)
	g.GET("/sentiment/trends", h.Trends)
	g.GET("/ticker", h.Ticker)
	g.GET("/ticker/:isin", h.TickerByISIN)
	g.GET("/dashboard", h.Dashboard)
}

func (h *InsiderEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "sentiment", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "sentiment", err)
	}
	return h.respond(c, "sentiment", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.sentiment.ComputeSentiment(ctx, models.SentimentQuery{
			AsOf:           asOf,
			Days:           req.Days,
			Jurisdiction:   req.Jurisdiction,
			IncludeHistory: !req.Compact,
		})
	})
}

func (h *InsiderEchoHandler) CurrentSentiment(c echo.Context) error {
	req := &models.CurrentSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "sentiment_current", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "sentiment_current", err)
	}
	return h.respond(c, "sentiment_current", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.sentiment.CurrentSentiment(ctx, asOf, req.Jurisdiction)
	})
}

func (h *InsiderEchoHandler) Breadth(c echo.Context) error {
	req := &models.BreadthRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "breadth", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "breadth", err)
	}
	return h.respond(c, "breadth", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.sentiment.MarketBreadth(ctx, models.RankingQuery{
			AsOf:         asOf,
			Days:         req.Days,
			Jurisdiction: req.Jurisdiction,
		})
	})
}

func (h *InsiderEchoHandler) TopMovers(c echo.Context) error {
	req := &models.TopMoversRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "top_movers", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "top_movers", err)
	}
	return h.respond(c, "top_movers", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.sentiment.TopMovers(ctx, models.RankingQuery{
			AsOf:            asOf,
			Days:            req.Days,
			Jurisdiction:    req.Jurisdiction,
			Limit:           req.Limit,
			MinTransactions: req.MinTransactions,
		})
	})
}

func (h *InsiderEchoHandler) Trends(c echo.Context) error {
	req := &models.TrendsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "trends", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "trends", err)
	}
	return h.respond(c, "trends", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.sentiment.Trends(ctx, asOf, req.Jurisdiction)
	})
}

func (h *InsiderEchoHandler) Ticker(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "ticker", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "ticker", err)
	}
	return h.respond(c, "ticker", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.ticker.ComputeTicker(ctx, models.TickerQuery{
			AsOf:           asOf,
			Days:           req.Days,
			MinTrades:      req.MinTrades,
			MinTotalAmount: req.MinTotalAmount,
			ISINs:          domrepo.SplitEntityIDs(req.ISIN),
			Source:         req.Source,
			Limit:          req.Limit,
		})
	})
}

func (h *InsiderEchoHandler) TickerByISIN(c echo.Context) error {
	req := &models.TickerByISINRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "ticker_isin", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "ticker_isin", err)
	}
	return h.respond(c, "ticker_isin", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.ticker.TickerByISIN(ctx, req.ISIN, models.TickerQuery{
			AsOf:           asOf,
			Days:           req.Days,
			MinTrades:      req.MinTrades,
			MinTotalAmount: req.MinTotalAmount,
			Source:         req.Source,
			Limit:          req.Limit,
		})
	})
}

func (h *InsiderEchoHandler) Dashboard(c echo.Context) error {
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, "dashboard", verr)
	}
	asOf, err := h.asOf(req.AsOf)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	return h.respond(c, "dashboard", req.AsOf != "", func(ctx context.Context) (interface{}, error) {
		return h.dashboard.Overview(ctx, asOf, req.Jurisdiction)
	})
}

func (h *InsiderEchoHandler) Health(c echo.Context) error {
	if h.opts.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.Health(ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.Error(err))
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *InsiderEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.opts.Limiter.Allow(c.RealIP()) {
			metrics.APIErrors.WithLabelValues("rate_limit", strconv.Itoa(http.StatusTooManyRequests)).Inc()
			h.logger.Warn("rate limited", xlogger.String("remote", c.RealIP()), xlogger.String("path", c.Path()))
			return xhttp.TooManyRequestsResponse(c)
		}
		return next(c)
	}
}

func (h *InsiderEchoHandler) asOf(s string) (time.Time, error) {
	t, ok := xhttp.ParseAsOf(s, h.opts.Now)
	if !ok {
		return time.Time{}, xhttp.BadRequestError("asOf must be YYYY-MM-DD").WithParam("asOf", s)
	}
	return t, nil
}

// respond serves a cached body when present, otherwise computes, renders
// and caches it. Pinned responses use the longer TTL.
func (h *InsiderEchoHandler) respond(c echo.Context, endpoint string, pinned bool, fn func(ctx context.Context) (interface{}, error)) error {
	start := time.Now()
	defer metrics.ObserveSince(endpoint, start)
	ctx := c.Request().Context()
	key := cacheKey(c)

	if h.opts.Cache != nil {
		b, ok, err := h.opts.Cache.GetBytes(ctx, key)
		if err != nil {
			h.logger.Warn("cache read failed", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		}
		metrics.CacheHit(endpoint, ok)
		if ok {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	v, err := fn(ctx)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	body, err := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: v})
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	ttl := h.opts.CurrentTTL
	if pinned {
		ttl = h.opts.CacheTTL
	}
	if h.opts.Cache != nil && ttl > 0 {
		if err := h.opts.Cache.SetBytes(ctx, key, body, ttl); err != nil {
			h.logger.Warn("cache write failed", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *InsiderEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := FromDomainError(err)
	metrics.APIErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()
	fields := []xlogger.Field{
		xlogger.String("endpoint", endpoint),
		xlogger.Int("status", appErr.Status),
		xlogger.Error(err),
	}
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("analytics request failed", fields...)
	} else {
		h.logger.Warn("analytics request rejected", fields...)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *InsiderEchoHandler) badRequest(c echo.Context, endpoint string, verr interface{}) error {
	metrics.APIErrors.WithLabelValues(endpoint, strconv.Itoa(http.StatusBadRequest)).Inc()
	return xhttp.BadRequestResponse(c, verr)
}

// cacheKey is the path plus the query in canonical order.
func cacheKey(c echo.Context) string {
	return "resp:" + c.Request().URL.Path + "?" + c.QueryParams().Encode()
}
