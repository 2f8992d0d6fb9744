package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edge-sentinel/liveview/internal/config"
	"github.com/edge-sentinel/liveview/internal/liveview"
	"github.com/edge-sentinel/liveview/internal/logger"
	"github.com/edge-sentinel/liveview/internal/metrics"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.ChannelURL, "channel", cfg.ChannelURL, "Push channel websocket URL")
	flag.StringVar(&cfg.EventsURL, "events", cfg.EventsURL, "Historical events endpoint")
	flag.IntVar(&cfg.HistoryCapacity, "history", cfg.HistoryCapacity, "Event history capacity")
	flag.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "Fixed reconnect delay")
	flag.DurationVar(&cfg.KeepaliveInterval, "keepalive", cfg.KeepaliveInterval, "Keepalive interval")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Metrics server address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error, silent)")
	flag.BoolVar(&cfg.LogColor, "log-color", cfg.LogColor, "Enable colored log output")
	flag.Parse()

	// Initialize logger
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, cfg.LogColor)

	logger.Info("Main", "Live view client starting...")
	logger.Info("Main", "Channel: %s", cfg.ChannelURL)
	logger.Info("Main", "Events:  %s", cfg.EventsURL)
	logger.Info("Main", "Log level: %s", level)

	m := metrics.New()

	// Start metrics server
	go func() {
		logger.Info("Main", "Metrics server listening on %s", cfg.MetricsAddr)
		if err := m.StartServer(cfg.MetricsAddr); err != nil {
			logger.Error("Main", "Metrics server error: %v", err)
		}
	}()

	render := newConsoleRenderer()

	client := liveview.NewClient(liveview.ClientOptions{
		ChannelURL:        cfg.ChannelURL,
		EventsURL:         cfg.EventsURL,
		HistoryCapacity:   cfg.HistoryCapacity,
		ReconnectDelay:    cfg.ReconnectDelay,
		KeepaliveInterval: cfg.KeepaliveInterval,
		Status:            render.Status,
		Views:             render.Views(),
		EventList:         render.EventList,
		Metrics:           m,
	})

	client.Run(context.Background())

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	client.Shutdown()
	log.Println("Live view client stopped")
}
