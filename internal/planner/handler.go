package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/2beens/wellnesscoach/internal/middleware"
	"github.com/2beens/wellnesscoach/internal/telemetry/metrics"
	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/internal/widgets"
	"github.com/2beens/wellnesscoach/pkg"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// server-sent event names
const (
	EventStatus   = "status"
	EventFragment = "fragment"
	EventDone     = "done"
	EventError    = "error"
)

type TextPayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type NewHandlerParams struct {
	Generator      PlanGenerator
	Cache          PlanCache
	RateLimiter    middleware.RequestRateLimiter
	AllowedPerMin  int
	StatusInterval time.Duration
	MetricsManager *metrics.Manager
}

type Handler struct {
	generator      PlanGenerator
	cache          PlanCache
	rateLimiter    middleware.RequestRateLimiter
	allowedPerMin  int
	statusInterval time.Duration
	metricsManager *metrics.Manager
}

func NewHandler(params NewHandlerParams) *Handler {
	return &Handler{
		generator:      params.Generator,
		cache:          params.Cache,
		rateLimiter:    params.RateLimiter,
		allowedPerMin:  params.AllowedPerMin,
		statusInterval: params.StatusInterval,
		metricsManager: params.MetricsManager,
	}
}

// HandleGenerate streams a plan as server-sent events: status frames until the
// first fragment, fragment frames with the running text, then done or error.
func (handler *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.generate")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("generate plan, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Kind, _ = ParseKind(string(req.Kind))
	span.SetAttributes(attribute.String("kind", string(req.Kind)), attribute.String("user_id", req.UserID))

	if !handler.allow(ctx, w, req.UserID) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", pkg.ContentType.EventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// the client going away cancels ctx, which aborts the agent stream
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan widgets.Frame)
	animCtx, stopAnimation := context.WithCancel(ctx)
	var animWg sync.WaitGroup
	animWg.Add(1)
	go func() {
		defer animWg.Done()
		widgets.NewAnimation(handler.statusInterval, 2*handler.statusInterval).Run(animCtx, func(f widgets.Frame) {
			select {
			case frames <- f:
			case <-animCtx.Done():
			}
		})
	}()
	defer animWg.Wait()
	defer stopAnimation()

	partials := make(chan string)
	type result struct {
		text string
		err  error
	}
	results := make(chan result, 1)
	go func() {
		text, err := handler.generator.Generate(ctx, req, func(running string) {
			select {
			case partials <- running:
			case <-ctx.Done():
			}
		})
		results <- result{text: text, err: err}
	}()

	statusFrames := (<-chan widgets.Frame)(frames)
	for {
		select {
		case f := <-statusFrames:
			if err := writeEvent(w, flusher, EventStatus, f); err != nil {
				log.Debugf("plan stream: client gone: %s", err)
				cancel()
				<-results
				return
			}
		case running := <-partials:
			stopAnimation()
			statusFrames = nil
			if err := writeEvent(w, flusher, EventFragment, TextPayload{Text: running}); err != nil {
				log.Debugf("plan stream: client gone: %s", err)
				cancel()
				<-results
				return
			}
		case res := <-results:
			stopAnimation()
			if res.err != nil {
				if errors.Is(res.err, context.Canceled) {
					log.Debugf("plan stream for %s cancelled", req.UserID)
					return
				}
				log.Errorf("generate plan for %s: %s", req.UserID, res.err)
				span.RecordError(res.err)
				_ = writeEvent(w, flusher, EventError, ErrorPayload{Error: res.err.Error()})
				return
			}
			_ = writeEvent(w, flusher, EventDone, TextPayload{Text: res.text})
			return
		}
	}
}

func (handler *Handler) allow(ctx context.Context, w http.ResponseWriter, userID string) bool {
	if handler.rateLimiter == nil || handler.allowedPerMin <= 0 {
		return true
	}

	res, err := handler.rateLimiter.Allow(ctx, "plan::"+userID, redis_rate.PerMinute(handler.allowedPerMin))
	if err != nil {
		log.Errorf("plan rate limiter for %s: %s", userID, err)
		http.Error(w, "rate limit internal error", http.StatusInternalServerError)
		return false
	}
	if res.Allowed > 0 {
		return true
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterRateLimitedRequests.Inc()
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
	http.Error(w, fmt.Sprintf("retry after %f seconds", res.RetryAfter.Seconds()), http.StatusTooManyRequests)
	return false
}

func (handler *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plan.latest")
	defer span.End()

	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	if handler.cache == nil {
		http.Error(w, "plan not found", http.StatusNotFound)
		return
	}

	plan, err := handler.cache.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("get latest plan for %s: %s", userID, err)
		http.Error(w, "failed to get latest plan", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
