package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/config"
	"github.com/ritchiero/Budget-Agent/internal/logger"
)

const usage = `budget-agent-server - HTTP API and dashboard for agent spend

Usage: budget-agent-server [command]

Commands:
  (none)      Run in the foreground
  run         Run in the foreground (used by the service manager)
  install     Install as a background service
  start       Start the background service
  stop        Stop the background service
  uninstall   Remove the background service
  status      Show service status

Environment:
  PORT, OPENCLAW_DATA_DIR, RATE_LIMIT, OPENROUTER_API_KEY, OPENROUTER_MODEL,
  OPENROUTER_BASE_URL, LOG_LEVEL, BUDGET_AGENT_CONFIG
`

// serverService implements service.Interface around the HTTP server
type serverService struct {
	cfg *config.Config
	srv *http.Server
}

func (s *serverService) Start(svc service.Service) error {
	handler, err := newHandler(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to build handler: %w", err)
	}

	s.srv = &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.WithFields(logrus.Fields{
		"addr":     s.srv.Addr,
		"data_dir": s.cfg.DataDir,
		"llm":      s.cfg.LLM.APIKey != "",
		"api_key":  s.cfg.Server.APIKeyHash != "",
	}).Info("Starting budget-agent-server")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()
	return nil
}

func (s *serverService) Stop(svc service.Service) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Log.Info("Shutting down budget-agent-server")
	return s.srv.Shutdown(ctx)
}

func main() {
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	var svcCommand string
	if len(os.Args) > 1 {
		svcCommand = os.Args[1]
	}

	switch svcCommand {
	case "", "run", "install", "start", "stop", "uninstall", "status":
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", svcCommand, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	svcConfig := &service.Config{
		Name:        "budget-agent-server",
		DisplayName: "Budget Agent Server",
		Description: "Serves agent cost reports and the Budget Agent dashboard",
		Arguments:   []string{"run"},
	}

	svc := &serverService{cfg: cfg}
	s, err := service.New(svc, svcConfig)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to create service")
	}

	switch svcCommand {
	case "install":
		if err := s.Install(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to install service")
		}
		if err := s.Start(); err != nil {
			logger.Log.WithError(err).Fatal("Service installed but failed to start")
		}
		fmt.Printf("Service installed and started on port %s.\n", cfg.Server.Port)

	case "start":
		if err := s.Start(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to start service")
		}
		fmt.Println("Service started.")

	case "stop":
		if err := s.Stop(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to stop service")
		}
		fmt.Println("Service stopped.")

	case "uninstall":
		s.Stop() // ignore error
		if err := s.Uninstall(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to uninstall service")
		}
		fmt.Println("Service uninstalled.")

	case "status":
		status, err := s.Status()
		if err != nil {
			fmt.Printf("Service status: not installed or error (%v)\n", err)
			return
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service status: running")
		case service.StatusStopped:
			fmt.Println("Service status: stopped")
		default:
			fmt.Println("Service status: unknown")
		}

	default:
		if err := s.Run(); err != nil {
			logger.Log.WithError(err).Fatal("Service run failed")
		}
	}
}
