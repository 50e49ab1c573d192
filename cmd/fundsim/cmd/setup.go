package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rustyeddy/fundsim/config"
	"github.com/rustyeddy/fundsim/journal"
	"github.com/rustyeddy/fundsim/ledger"
)

// loadConfig reads the config file when a path is given, otherwise
// falls back to defaults with environment overrides.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadEnv()
}

func openStore(cfg *config.Config, log *slog.Logger) (*ledger.Store, error) {
	p, err := ledger.NewFilePersister(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open storage dir: %w", err)
	}
	return ledger.Open(p, cfg.Account.StartingCapital, log)
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "none":
		return journal.Nop{}, nil
	default:
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
