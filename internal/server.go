package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/wellnesscoach/internal/agent"
	"github.com/2beens/wellnesscoach/internal/coachmcp"
	"github.com/2beens/wellnesscoach/internal/config"
	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/middleware"
	"github.com/2beens/wellnesscoach/internal/misc"
	"github.com/2beens/wellnesscoach/internal/onboarding"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/telemetry/metrics"
	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/internal/widgets"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// registrations per client address and minute
const registerRateLimitPerMin = 5

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config

	redisClient   *redis.Client
	rateLimiter   middleware.RequestRateLimiter
	agentClient   misc.AgentChecker
	registrar     onboarding.Registrar
	generator     planner.PlanGenerator
	planCache     planner.PlanCache
	metricsSource dashboard.MetricsSource

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	AgentApiURL             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	promRegistry := metrics.SetupPrometheus(metrics.NewRedisPoolCollector("coach", rdb))
	metricsManager := metrics.NewManager("coach", "bff", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "wellness-coach-bff")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	agentApiURL := params.Config.AgentApiURL
	if params.AgentApiURL != "" {
		agentApiURL = params.AgentApiURL
	}
	agentClient := agent.NewClient(agent.NewClientParams{
		BaseURL:        agentApiURL,
		AppName:        params.Config.AgentAppName,
		Timeout:        time.Duration(params.Config.AgentTimeoutSeconds) * time.Second,
		TokenStreaming: params.Config.AgentTokenStreaming,
	})
	if err := agentClient.Ping(ctx); err != nil {
		log.Warnf("failed to ping agent api [%s]: %s", agentApiURL, err)
	}

	planCache := planner.NewRedisCache(rdb, time.Duration(params.Config.PlanCacheTTLMinutes)*time.Minute)

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,

		redisClient:   rdb,
		rateLimiter:   redis_rate.NewLimiter(rdb),
		agentClient:   agentClient,
		registrar:     agent.NewRegistrar(agentClient),
		generator:     planner.NewGenerator(agentClient, planCache, metricsManager),
		planCache:     planCache,
		metricsSource: dashboard.NewStaticMetrics(),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("coach-router"))

	miscHandler := misc.NewHandler(s.agentClient, s.versionInfo)
	miscHandler.SetupRoutes(r)

	onboardingHandler := onboarding.NewHandler(s.registrar, s.metricsManager)
	var registerHandler http.Handler = http.HandlerFunc(onboardingHandler.HandleRegister)
	if s.rateLimiter != nil {
		registerHandler = middleware.RateLimit(
			s.rateLimiter,
			middleware.ClientRateKey("register"),
			registerRateLimitPerMin,
			s.metricsManager,
		)(registerHandler)
	}
	r.HandleFunc("/onboarding/options", onboardingHandler.HandleOptions).Methods("GET", "OPTIONS").Name("onboarding-options")
	r.HandleFunc("/onboarding/validate", onboardingHandler.HandleValidateField).Methods("POST", "OPTIONS").Name("validate-field")
	r.HandleFunc("/onboarding/step/{step}/validate", onboardingHandler.HandleValidateStep).Methods("POST", "OPTIONS").Name("validate-step")
	r.Handle("/onboarding/register", registerHandler).Methods("POST", "OPTIONS").Name("register")
	r.HandleFunc("/onboarding/bmi", onboardingHandler.HandleBMI).Methods("POST", "OPTIONS").Name("bmi")

	planHandler := planner.NewHandler(planner.NewHandlerParams{
		Generator:      s.generator,
		Cache:          s.planCache,
		RateLimiter:    s.rateLimiter,
		AllowedPerMin:  s.config.PlanRateLimitPerMin,
		StatusInterval: time.Duration(s.config.PlanStatusIntervalSec) * time.Second,
		MetricsManager: s.metricsManager,
	})
	r.HandleFunc("/plan/generate", planHandler.HandleGenerate).Methods("POST", "OPTIONS").Name("generate-plan")
	r.HandleFunc("/plan/latest/{userId}", planHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-plan")

	dashboardHandler := dashboard.NewHandler(s.metricsSource)
	r.HandleFunc("/dashboard/metrics", dashboardHandler.HandleMetrics).Methods("GET", "OPTIONS").Name("dashboard-metrics")
	r.HandleFunc("/dashboard/feedback", dashboardHandler.HandleFeedback).Methods("POST", "OPTIONS").Name("feedback")

	videosHandler := widgets.NewVideosHandler(s.config.VideosDir)
	r.PathPrefix(widgets.VideoFilesPath).Handler(videosHandler.FileServer()).Methods("GET", "OPTIONS").Name("video-files")
	r.HandleFunc("/videos", videosHandler.HandleList).Methods("GET", "OPTIONS").Name("list-videos")
	r.HandleFunc("/videos/{exercise}", videosHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-video")

	mcpServer := coachmcp.NewServer(s.generator)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)
	r.Handle("/mcp", mcpHandler).Methods("GET", "POST", "DELETE", "OPTIONS").Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:     router,
		Addr:        ipAndPort,
		ReadTimeout: time.Minute,
		// plan streams stay open until the agent is done
		WriteTimeout: time.Duration(s.config.AgentTimeoutSeconds)*time.Second + time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// in-flight plan streams are cut when the deadline hits
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeConnections.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeConnections.Add(-1)
	default:
		// do nothing
	}
}
