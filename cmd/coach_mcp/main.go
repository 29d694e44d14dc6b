// Package main runs the wellness coach MCP server over stdio (for local assistant use).
// The same MCP server is also mounted on the coach service at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/wellnesscoach/internal/agent"
	"github.com/2beens/wellnesscoach/internal/coachmcp"
	"github.com/2beens/wellnesscoach/internal/config"
	"github.com/2beens/wellnesscoach/internal/logging"
	"github.com/2beens/wellnesscoach/internal/planner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	logFile := flag.String("log", "", "log file, stdout belongs to the MCP transport")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	envVars, err := config.LoadEnv(ctx)
	if err != nil {
		log.Fatalf("load env: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:    *logFile,
		LogLevel:       cfg.LogLevel,
		Environment:    cfg.Environment,
		StdoutReserved: true,
	})

	agentApiURL := cfg.AgentApiURL
	if envVars.AgentApiURL != "" {
		agentApiURL = envVars.AgentApiURL
	}
	agentClient := agent.NewClient(agent.NewClientParams{
		BaseURL:        agentApiURL,
		AppName:        cfg.AgentAppName,
		Timeout:        time.Duration(cfg.AgentTimeoutSeconds) * time.Second,
		TokenStreaming: cfg.AgentTokenStreaming,
	})
	generator := planner.NewGenerator(agentClient, nil, nil)

	server := coachmcp.NewServer(generator)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
