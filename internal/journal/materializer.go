package journal

import (
	"errors"
	"path/filepath"
	"strings"
)

// Materializer copies located media files into the export's media directory.
type Materializer struct {
	fsmgr  FilesystemManager
	logger Logger
}

// NewMaterializer creates a new Materializer.
func NewMaterializer(fsmgr FilesystemManager, logger Logger) *Materializer {
	return &Materializer{fsmgr: fsmgr, logger: logger}
}

// Materialize copies src into destDir as <id><ext>, where ext is the
// lowercased extension of src, and returns the new file name.
// It reports false when src is empty, missing, or cannot be copied; copy
// failures are logged and never returned. A src that already is the
// destination file is left as is.
func (m *Materializer) Materialize(src, destDir, id string) (string, bool) {
	if src == "" {
		return "", false
	}

	info, err := m.fsmgr.Stat(src)
	if err != nil || info.IsDir() {
		m.logger.Debug("media source missing", "source", src)
		return "", false
	}

	name := id + strings.ToLower(filepath.Ext(src))
	if id == "" || filepath.Base(name) != name || !filepath.IsLocal(name) {
		m.logger.Warn("could not copy media", "source", src, "error", "invalid attachment id "+id)
		return "", false
	}

	err = m.fsmgr.CopyFile(src, filepath.Join(destDir, name))
	if errors.Is(err, ErrSameFile) {
		m.logger.Debug("media already in place", "source", src, "filename", name)
		return name, true
	}
	if err != nil {
		m.logger.Warn("could not copy media", "source", src, "error", err)
		return "", false
	}

	m.logger.Debug("media copied", "source", src, "filename", name)
	return name, true
}
