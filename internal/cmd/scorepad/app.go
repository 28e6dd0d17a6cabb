package scorepad

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/scorepad/internal/platform/config"
	"github.com/louisbranch/scorepad/internal/scorepad/archive"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/state"
	"github.com/louisbranch/scorepad/internal/scorepad/engine"
	"github.com/louisbranch/scorepad/internal/scorepad/notify"
	"github.com/louisbranch/scorepad/internal/scorepad/storage/sqlite"
)

// envConfig is the environment-sourced configuration for the CLI.
type envConfig struct {
	DBPath     string `env:"SCOREPAD_DB_PATH" envDefault:"scorepad.db"`
	SignalPath string `env:"SCOREPAD_SIGNAL_PATH"`
}

// app bundles the wired components behind one CLI invocation.
type app struct {
	store    *sqlite.Store
	engine   *engine.Instance
	archive  *archive.Manager
	notifier notify.ChangeNotifier

	closers []func() error
}

// openApp wires store, engine, and archive manager from flags and
// environment. Flags win over environment variables.
func openApp(opts *RootOptions) (*app, error) {
	var cfg envConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}
	dbPath := strings.TrimSpace(opts.DBPath)
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	signalPath := strings.TrimSpace(opts.SignalPath)
	if signalPath == "" {
		signalPath = cfg.SignalPath
	}
	if signalPath == "" {
		signalPath = dbPath + ".signal"
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	application := &app{store: store}
	application.closers = append(application.closers, store.Close)

	var notifier notify.ChangeNotifier = notify.Noop{}
	if signal, err := notify.NewFileSignal(signalPath); err == nil {
		notifier = signal
		application.closers = append(application.closers, signal.Close)
	} else if opts.Verbose {
		log.Printf("cross-process signaling disabled: %v", err)
	}
	application.notifier = notifier

	eng, err := engine.New(store, state.DefaultRegistry(), notifier)
	if err != nil {
		application.Close()
		return nil, err
	}
	application.engine = eng

	manager, err := archive.NewManager(store, notifier)
	if err != nil {
		application.Close()
		return nil, err
	}
	application.archive = manager
	return application, nil
}

// rehydrate brings the engine mirror up to the log's true end.
func (a *app) rehydrate(ctx context.Context) error {
	return a.engine.Rehydrate(ctx)
}

// Close releases every held resource in reverse acquisition order.
func (a *app) Close() {
	if a == nil {
		return
	}
	if a.engine != nil {
		a.engine.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
}
