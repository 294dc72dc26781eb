package main

import (
	"go.uber.org/zap"

	"github.com/cchtools/cch/internal/audit"
	"github.com/cchtools/cch/internal/config"
	"github.com/cchtools/cch/internal/logging"
)

// runtime bundles the resolved configuration, the stderr diagnostic
// logger, and the audit trail shared by all subcommands.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	trail *audit.Trail
}

// newRuntime wires up the shared pieces. It never fails: handlers run
// inside someone else's session, so a broken config or unwritable
// trail degrades to defaults instead of taking the command down.
func newRuntime() *runtime {
	var overrides *config.Config
	if GetVerbose() {
		overrides = &config.Config{LogLevel: "debug"}
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		cfg = config.Default()
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		log = logging.Nop()
	}

	return &runtime{
		cfg:   cfg,
		log:   log,
		trail: audit.NewTrail(cfg.AuditLog, log),
	}
}

// close flushes buffered diagnostics.
func (rt *runtime) close() {
	_ = logging.Sync(rt.log)
}
