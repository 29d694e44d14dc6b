package misc

import (
	"context"
	"net/http"

	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// AgentChecker is the part of the agent client used for health checks.
type AgentChecker interface {
	ListApps(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type AgentHealthResponse struct {
	Status string   `json:"status"`
	Apps   []string `json:"apps,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type Handler struct {
	agent       AgentChecker
	versionInfo string
}

func NewHandler(agent AgentChecker, versionInfo string) *Handler {
	return &Handler{
		agent:       agent,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/agent/health", handler.handleAgentHealth).Methods("GET").Name("agent-health")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleAgentHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.agentHealth")
	defer span.End()

	if err := handler.agent.Ping(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent-unhealthy")
		log.Warnf("agent health check: %s", err)
		pkg.WriteJSON(w, AgentHealthResponse{
			Status: "unavailable",
			Error:  err.Error(),
		}, http.StatusServiceUnavailable)
		return
	}

	// served from the client cache right after Ping
	apps, err := handler.agent.ListApps(ctx)
	if err != nil {
		log.Errorf("agent health, list apps: %s", err)
	}
	pkg.WriteJSON(w, AgentHealthResponse{
		Status: "ok",
		Apps:   apps,
	}, http.StatusOK)
}
