// Package agentd wires configuration, the mib.Agent, proxy registration,
// plugin-directory loading, and the UDP server into a single lifecycle:
// build, start, run until cancelled, stop in reverse order.
//
// Grounded on the teacher's pkg/snmpcollector/app.App (build stages in
// declared order, Stop in reverse, a single entry point cmd/main.go calls)
// — generalised here from "poll devices on a schedule" to "serve a MIB
// tree over UDP". See SPEC_FULL.md §3 (agentd.App).
package agentd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vpbank/snmpmibd/mib"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/config"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/plugindir"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/proxyclient"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/server"
)

// App is the assembled agent: agent tree, proxy pool, and UDP server.
type App struct {
	logger *slog.Logger

	agent  *mib.Agent
	pool   *proxyclient.Pool
	server *server.Server
}

// Build constructs the agent tree, registers any configured proxies, loads
// the plugin directory if set, and prepares the UDP server — but does not
// start listening. Call Run to do that.
func Build(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	agent := mib.NewAgent(mib.SystemInfo{
		Descr:    "snmpmibd",
		Contact:  cfg.SysContact,
		Name:     cfg.SysName,
		Location: cfg.SysLocation,
	}, logger)

	pool := proxyclient.NewPool(logger)
	for _, p := range cfg.Proxies {
		oid, err := mib.ParseOid(p.OID)
		if err != nil {
			return nil, fmt.Errorf("agentd: proxy oid %q: %w", p.OID, err)
		}
		client := proxyclient.NewClient(proxyclient.Target{
			Address:   p.Address,
			Port:      p.Port,
			Community: p.Community,
			Timeout:   time.Duration(p.TimeoutMs) * time.Millisecond,
			Retries:   p.Retries,
		}, pool, logger)
		if err := agent.AddProxy(oid, client); err != nil {
			return nil, fmt.Errorf("agentd: register proxy %q: %w", p.OID, err)
		}
	}

	if cfg.PluginDir != "" {
		if err := plugindir.Load(cfg.PluginDir, agent, logger); err != nil {
			return nil, fmt.Errorf("agentd: load plugin dir %q: %w", cfg.PluginDir, err)
		}
	}

	srv := server.New(server.Options{
		Port:          cfg.Port,
		MaxPacketSize: cfg.MaxPacketSize,
		Communities:   cfg.Communities,
	}, agent, logger)

	return &App{logger: logger, agent: agent, pool: pool, server: srv}, nil
}

// Run starts serving and blocks until ctx is cancelled, then stops
// everything in reverse build order.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Run(ctx); err != nil {
		a.logger.Warn("agentd: server stopped with error", "error", err.Error())
	}
	return a.pool.Close()
}

type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
