package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type MetricsResponse struct {
	HealthMetrics
	ReadinessColor        string  `json:"readinessColor"`
	ActiveMinutesProgress float64 `json:"activeMinutesProgress"`
}

type FeedbackRequest struct {
	UserID   string `json:"userId"`
	Feedback string `json:"feedback"`
}

type Handler struct {
	metricsSource MetricsSource
}

func NewHandler(metricsSource MetricsSource) *Handler {
	return &Handler{
		metricsSource: metricsSource,
	}
}

func (handler *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.metrics")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	span.SetAttributes(attribute.String("user_id", userID))

	snapshot, err := handler.metricsSource.Snapshot(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot-failed")
		log.Errorf("get health metrics for [%s]: %s", userID, err)
		http.Error(w, "failed to get health metrics", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, MetricsResponse{
		HealthMetrics:         snapshot,
		ReadinessColor:        snapshot.Readiness.Color(),
		ActiveMinutesProgress: snapshot.ActiveMinutesProgress(),
	}, http.StatusOK)
}

func (handler *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.feedback")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("feedback, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		http.Error(w, "error, feedback empty", http.StatusBadRequest)
		return
	}

	log.WithField("user_id", req.UserID).Infof("feedback submitted: %s", req.Feedback)
	w.WriteHeader(http.StatusNoContent)
}
