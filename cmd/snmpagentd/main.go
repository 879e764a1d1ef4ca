// Command snmpagentd serves an SNMPv1 MIB tree built from user-registered
// plugins and proxies, per spec.md/SPEC_FULL.md.
//
// Grounded nearly module-for-module on the teacher's
// cmd/snmpcollector/main.go: dot-namespaced flag.StringVar/IntVar calls,
// buildLogger(level, format), signal.NotifyContext(ctx, SIGINT, SIGTERM),
// block on ctx.Done() then Stop — rewritten end to end for snmpmibd's own
// flag set and App type, not copied verbatim. See DESIGN.md
// "cmd/snmpagentd".
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vpbank/snmpmibd/pkg/snmpmibd/agentd"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/config"
)

func main() {
	var (
		logLevel    = flag.String("log.level", "info", "log level: debug, info, warn, error")
		logFormat   = flag.String("log.fmt", "text", "log format: text, json")
		configPath  = flag.String("agent.config", "/etc/snmpmibd/snmpmibd.yaml", "path to the agent YAML configuration")
		portFlag    = flag.Int("agent.port", 0, "override the configured UDP listen port (0 = use config)")
		community   = flag.String("agent.community", "", "comma-separated community list, overrides config")
	)
	flag.Parse()

	logger := buildLogger(*logLevel, *logFormat)

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		logger.Error("snmpagentd: failed to load configuration", "error", err.Error())
		os.Exit(1)
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if *community != "" {
		cfg.Communities = strings.Split(*community, ",")
	}

	app, err := agentd.Build(cfg, logger)
	if err != nil {
		logger.Error("snmpagentd: failed to build agent", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("snmpagentd: starting", "port", cfg.Port)
	if err := app.Run(ctx); err != nil {
		logger.Error("snmpagentd: exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func buildLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
