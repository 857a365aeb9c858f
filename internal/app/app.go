package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"dayone-export/internal/config"
	"dayone-export/internal/database"
	"dayone-export/internal/encryption"
	"dayone-export/internal/fs"
	"dayone-export/internal/journal"
	"dayone-export/internal/vault"
)

// ErrNoVaults is returned by Publish and Restore when the config names no vault.
var ErrNoVaults = errors.New("no vaults configured")

// ExportApp is the application layer between the CLI and the journal package.
// It constructs dependencies from config, exposes high-level operations,
// and releases the database and log file on Close.
type ExportApp struct {
	cfg     *config.Config
	fsmgr   *fs.OSFilesystemManager
	logger  *slogAdapter
	logFile *os.File
	clock   journal.Clock
	run     *Run
	store   *database.SQLiteStore
}

// NewExportApp creates an ExportApp from the given config.
// operation identifies the CLI command being run (e.g. "Export", "Publish").
// Log records are also written to stderr when it is non-nil. An unusable
// log directory or log level degrades logging instead of failing.
// The caller must call Close when done.
func NewExportApp(cfg *config.Config, operation string, stderr io.Writer) (*ExportApp, error) {
	var warnings []string
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		warnings = append(warnings, err.Error()+", using info")
		level = slog.LevelInfo
	}

	clock := journal.RealClock{}
	run := NewRun(operation, clock.Now())
	logger, logFile, err := newLogger(cfg.LogDir, level, run.ID, stderr)
	if err != nil {
		warnings = append(warnings, err.Error()+", logging to stderr only")
		logger = newStderrLogger(level, run.ID, stderr)
	}
	for _, w := range warnings {
		logger.Warn("logging degraded", "reason", w)
	}

	a := &ExportApp{
		cfg:     cfg,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		logger:  &slogAdapter{l: logger},
		logFile: logFile,
		clock:   clock,
		run:     run,
	}
	a.logger.Debug("run started", "operation", operation)
	return a, nil
}

// openStore opens the Day One database on first use.
// A missing database is reported as *database.NotFoundError.
func (a *ExportApp) openStore() (*database.SQLiteStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	a.logger.Info("connecting to Day One database", "path", a.cfg.DBPath)
	store, err := database.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Connect opens the Day One database. Later operations open it lazily, so
// calling Connect is only needed to fail early on a missing database.
func (a *ExportApp) Connect() error {
	_, err := a.openStore()
	return a.run.Record(err)
}

// Journals returns the journals in the Day One database.
func (a *ExportApp) Journals() ([]journal.Journal, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, a.run.Record(err)
	}
	journals, err := store.Journals()
	return journals, a.run.Record(err)
}

// ExportCallbacks report an export's progress to the caller. Any may be nil.
type ExportCallbacks struct {
	JournalsLoaded func(count int)
	EntriesLoaded  func(count int)
	Progress       func(done, total int)
}

// Export writes journal.json and the media directory into the configured
// output directory.
func (a *ExportApp) Export(cb ExportCallbacks) (*journal.ExportSummary, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, a.run.Record(err)
	}

	exporter := journal.NewExporter(store, a.fsmgr, a.logger, a.clock)
	summary, err := exporter.Export(journal.ExportOptions{
		MediaRoot:   a.cfg.PhotosPath,
		OutputDir:   a.cfg.OutputDir,
		JournalName: a.cfg.Journal,

		JournalsLoaded: cb.JournalsLoaded,
		EntriesLoaded:  cb.EntriesLoaded,
		Progress:       cb.Progress,
	})
	return summary, a.run.Record(err)
}

// Publish uploads the configured output directory to the first vault,
// encrypting it when encryption is configured.
func (a *ExportApp) Publish() (*journal.Manifest, error) {
	publisher, _, err := a.newPublisher()
	if err != nil {
		return nil, a.run.Record(err)
	}
	manifest, err := publisher.Publish(a.cfg.OutputDir)
	return manifest, a.run.Record(err)
}

// Restore downloads a published export into dest. An empty exportID
// restores the latest export. passphrase is asked for only when
// encryption is configured.
func (a *ExportApp) Restore(exportID, dest string, passphrase func() (string, error)) ([]string, error) {
	publisher, enc, err := a.newPublisher()
	if err != nil {
		return nil, a.run.Record(err)
	}

	var decryptCtx journal.DecryptionContext
	if enc != nil {
		pass, err := passphrase()
		if err != nil {
			return nil, a.run.Record(fmt.Errorf("reading passphrase: %w", err))
		}
		decryptCtx, err = enc.Unlock(pass)
		if err != nil {
			return nil, a.run.Record(fmt.Errorf("unlocking private key: %w", err))
		}
	}

	restored, err := publisher.Restore(exportID, dest, decryptCtx)
	return restored, a.run.Record(err)
}

// InitKeys generates the encryption key pair, sealing the private key with
// passphrase. It returns the public recipient when the encryptor exposes one.
func (a *ExportApp) InitKeys(passphrase string) (string, error) {
	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return "", a.run.Record(fmt.Errorf("creating encryptor: %w", err))
	}
	if enc == nil {
		return "", a.run.Record(errors.New("encryption is disabled: set encryption.type in the config first"))
	}
	if err := enc.Setup(passphrase); err != nil {
		return "", a.run.Record(err)
	}
	a.logger.Info("encryption keys generated", "type", a.cfg.Encryption.Type)

	if r, ok := enc.(interface{ Recipient() (string, error) }); ok {
		recipient, err := r.Recipient()
		return recipient, a.run.Record(err)
	}
	return "", nil
}

// newPublisher wires a Publisher to the first configured vault.
// The returned encryptor is nil when encryption is disabled.
func (a *ExportApp) newPublisher() (*journal.Publisher, journal.Encryptor, error) {
	if len(a.cfg.Vaults) == 0 {
		return nil, nil, ErrNoVaults
	}
	v, err := vault.NewVaultFromConfig(a.cfg.Vaults[0])
	if err != nil {
		return nil, nil, fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(); err != nil {
		return nil, nil, fmt.Errorf("vault %q is not usable: %w", a.cfg.Vaults[0].Name, err)
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return nil, nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		return nil, nil, errors.New("encryption keys not found: run `dayone-export keys init` first")
	}

	return journal.NewPublisher(v, a.fsmgr, enc, a.logger, a.clock), enc, nil
}

// Close closes the database and the log file.
func (a *ExportApp) Close() error {
	var firstErr error

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	a.logger.Debug("run finished", "operation", a.run.Operation, "status", a.run.Status, "elapsed", a.run.Elapsed(a.clock.Now()))

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
