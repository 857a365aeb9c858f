package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DocumentFilename is the name of the export document inside the output directory.
	DocumentFilename = "journal.json"

	// MediaDirname is the name of the media directory inside the output directory.
	MediaDirname = "media"

	progressInterval = 100
)

// ExportOptions configures a single export run. All paths are resolved by the caller.
type ExportOptions struct {
	MediaRoot   string
	OutputDir   string
	JournalName string // optional, matched case-insensitively against journal names

	// JournalsLoaded and EntriesLoaded, if set, are called with the number of
	// live journals and of entries to export, before any entry is processed.
	JournalsLoaded func(count int)
	EntriesLoaded  func(count int)

	// Progress, if set, is called every 100 entries with the number of the
	// entry about to be processed and the total.
	Progress func(done, total int)
}

// ExportSummary reports what an export produced.
type ExportSummary struct {
	Journals     int
	Entries      int
	MediaCopied  int
	MediaMissing int
	OutputFile   string
	MediaDir     string
}

// Exporter drives an export: it loads journals and entries from the store,
// aggregates each entry, and writes the resulting Document once at the end.
type Exporter struct {
	store  Store
	fsmgr  FilesystemManager
	logger Logger
	clock  Clock
}

// NewExporter creates a new Exporter with the provided dependencies.
func NewExporter(store Store, fsmgr FilesystemManager, logger Logger, clock Clock) *Exporter {
	return &Exporter{
		store:  store,
		fsmgr:  fsmgr,
		logger: logger,
		clock:  clock,
	}
}

// Export runs a full export into opts.OutputDir.
// Only failures to prepare the output directory, to list journals or
// entries, or to write the document are returned; per-entry problems are
// logged and degrade the affected fields.
func (e *Exporter) Export(opts ExportOptions) (*ExportSummary, error) {
	mediaDir := filepath.Join(opts.OutputDir, MediaDirname)
	if err := e.fsmgr.MkdirAll(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := e.fsmgr.MkdirAll(mediaDir); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}

	journals, err := e.store.Journals()
	if err != nil {
		return nil, fmt.Errorf("loading journals: %w", err)
	}
	if journals == nil {
		journals = []Journal{}
	}
	e.logger.Info("journals loaded", "count", len(journals))
	if opts.JournalsLoaded != nil {
		opts.JournalsLoaded(len(journals))
	}

	journalID := e.resolveJournal(journals, opts.JournalName)

	records, err := e.store.Entries(journalID)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	e.logger.Info("entries loaded", "count", len(records))
	if opts.EntriesLoaded != nil {
		opts.EntriesLoaded(len(records))
	}

	agg := NewAggregator(e.store, NewLocator(opts.MediaRoot, e.fsmgr), NewMaterializer(e.fsmgr, e.logger), mediaDir, e.logger)

	summary := &ExportSummary{
		Journals:   len(journals),
		OutputFile: filepath.Join(opts.OutputDir, DocumentFilename),
		MediaDir:   mediaDir,
	}

	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		if (i+1)%progressInterval == 0 {
			e.logger.Info("processing entries", "done", i+1, "total", len(records))
			if opts.Progress != nil {
				opts.Progress(i+1, len(records))
			}
		}

		entry := agg.Aggregate(rec)
		for _, att := range entry.Attachments {
			if att.Filename != nil {
				summary.MediaCopied++
			} else {
				summary.MediaMissing++
			}
		}
		entries = append(entries, entry)
	}
	summary.Entries = len(entries)

	doc := Document{
		ExportDate: FormatTime(e.clock.Now()),
		Journals:   journals,
		Entries:    entries,
	}
	if err := e.writeDocument(summary.OutputFile, &doc); err != nil {
		return nil, err
	}

	e.logger.Info("export complete",
		"entries", summary.Entries,
		"media_copied", summary.MediaCopied,
		"media_missing", summary.MediaMissing,
		"output", summary.OutputFile,
	)
	return summary, nil
}

// resolveJournal returns the id of the journal named name, or nil to export
// every journal. An unmatched name is reported and treated as no filter.
func (e *Exporter) resolveJournal(journals []Journal, name string) *int64 {
	if name == "" {
		return nil
	}
	for _, j := range journals {
		if j.Name != nil && strings.EqualFold(*j.Name, name) {
			id := j.ID
			return &id
		}
	}
	e.logger.Warn("journal not found, exporting all journals", "journal", name)
	return nil
}

func (e *Exporter) writeDocument(path string, doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export document: %w", err)
	}
	if err := e.fsmgr.WriteFileAtomic(path, &buf); err != nil {
		return fmt.Errorf("writing export document: %w", err)
	}
	return nil
}
