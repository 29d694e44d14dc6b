// Package main runs the wellness coach terminal client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/wellnesscoach/internal/agent"
	"github.com/2beens/wellnesscoach/internal/config"
	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/logging"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/tui"
	"github.com/2beens/wellnesscoach/internal/widgets"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	logFile := flag.String("log", "./coach_tui.log", "log file, stdout belongs to the UI")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	envVars, err := config.LoadEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load env: %s\n", err)
		os.Exit(1)
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
	if err := agentClient.Ping(ctx); err != nil {
		log.Warnf("agent api at %s not reachable: %s", agentApiURL, err)
	}

	shell := dashboard.NewShell(dashboard.NewShellParams{
		Environment:    cfg.Environment,
		SkipOnboarding: envVars.SkipOnboarding,
		Generator:      planner.NewGenerator(agentClient, nil, nil),
	})
	defer shell.Close()

	model := tui.NewModel(tui.NewModelParams{
		Ctx:           ctx,
		Shell:         shell,
		Registrar:     agent.NewRegistrar(agentClient),
		MetricsSource: dashboard.NewStaticMetrics(),
		Animation:     widgets.NewAnimation(widgets.DefaultEmojiInterval, widgets.DefaultCaptionInterval),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		log.Errorf("tui stopped: %s", err)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
