package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/wellnesscoach/internal/agent"
	"github.com/2beens/wellnesscoach/internal/telemetry/metrics"
	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=planner_mocks_test.go -package=planner_test

// Streamer is the part of the agent client the generator needs.
type Streamer interface {
	CreateSession(ctx context.Context, userID string, state map[string]any) (*agent.Session, error)
	StreamMessage(ctx context.Context, userID, sessionID, message string) (<-chan agent.StreamEvent, error)
}

// Generator turns a plan request into streamed plan text.
type Generator struct {
	streamer       Streamer
	cache          PlanCache
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewGenerator(streamer Streamer, cache PlanCache, metricsManager *metrics.Manager) *Generator {
	return &Generator{
		streamer:       streamer,
		cache:          cache,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// Generate opens an agent session and streams the plan. onPartial receives the
// running text after every fragment. On error no partial result survives.
func (g *Generator) Generate(ctx context.Context, req Request, onPartial func(text string)) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.generate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generate-failed")
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return "", err
	}
	kind, _ := ParseKind(string(req.Kind))
	req.Kind = kind
	span.SetAttributes(attribute.String("kind", string(kind)), attribute.String("user_id", req.UserID))

	started := g.now()
	if g.metricsManager != nil {
		g.metricsManager.GaugeActivePlans.Inc()
		defer g.metricsManager.GaugeActivePlans.Dec()
	}

	session, err := g.streamer.CreateSession(ctx, req.UserID, map[string]any{
		"user_email": req.Email,
		"plan_kind":  string(kind),
	})
	if err != nil {
		g.countPlan(kind, "failed")
		return "", fmt.Errorf("create agent session: %w", err)
	}

	events, err := g.streamer.StreamMessage(ctx, req.UserID, session.ID, Prompt(req))
	if err != nil {
		g.countPlan(kind, "failed")
		return "", fmt.Errorf("start plan stream: %w", err)
	}

	var buf Buffer
	for ev := range events {
		switch ev.Kind {
		case agent.StreamFragment:
			running := buf.Append(ev.Text)
			if g.metricsManager != nil {
				g.metricsManager.CounterPlanFragments.Inc()
			}
			if onPartial != nil {
				onPartial(running)
			}
		case agent.StreamError:
			buf.Discard()
			g.countPlan(kind, "failed")
			drain(events)
			return "", ev.Err
		case agent.StreamDone:
			final := buf.Finalize()
			drain(events)
			g.countPlan(kind, "done")
			if g.metricsManager != nil {
				g.metricsManager.HistogramPlanDuration.WithLabelValues(string(kind)).Observe(g.now().Sub(started).Seconds())
			}
			g.storeLatest(ctx, req, final)
			log.Debugf("plan [%s] for %s generated, %d chars", kind, req.UserID, len(final))
			return final, nil
		}
	}

	buf.Discard()
	g.countPlan(kind, "aborted")
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", agent.ErrStreamEnded
}

func (g *Generator) storeLatest(ctx context.Context, req Request, text string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.StoreLatest(ctx, Plan{
		UserID:    req.UserID,
		Kind:      req.Kind,
		Text:      text,
		CreatedAt: g.now(),
	}); err != nil {
		// the plan was delivered, the cache is best effort
		log.Errorf("store latest plan for %s: %s", req.UserID, err)
	}
}

func (g *Generator) countPlan(kind Kind, outcome string) {
	if g.metricsManager != nil {
		g.metricsManager.CounterPlans.WithLabelValues(string(kind), outcome).Inc()
	}
}

func drain(events <-chan agent.StreamEvent) {
	for range events {
	}
}
