package journal_test

import (
	"errors"
	"testing"

	"dayone-export/internal/journal"
	"dayone-export/internal/testutil"
)

func TestMaterializer_Materialize(t *testing.T) {
	t.Run("copies with lowercased extension", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/IMG_0001.HEIC", []byte("heic"))
		fsmgr.AddDirectory("/out/media")
		logger := testutil.NewRecordingLogger()

		name, ok := journal.NewMaterializer(fsmgr, logger).Materialize("/photos/IMG_0001.HEIC", "/out/media", "ATT1")
		if !ok {
			t.Fatal("Materialize() ok = false, want true")
		}
		if name != "ATT1.heic" {
			t.Errorf("Materialize() = %q, want %q", name, "ATT1.heic")
		}
		content, exists := fsmgr.ReadFile("/out/media/ATT1.heic")
		if !exists || string(content) != "heic" {
			t.Errorf("copied content = %q (exists %v), want %q", content, exists, "heic")
		}
		if w := logger.Warnings(); len(w) != 0 {
			t.Errorf("unexpected warnings: %v", w)
		}
	})

	t.Run("file without extension", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/blob", []byte("x"))
		fsmgr.AddDirectory("/out/media")

		name, ok := journal.NewMaterializer(fsmgr, journal.NewNopLogger()).Materialize("/photos/blob", "/out/media", "ATT2")
		if !ok || name != "ATT2" {
			t.Errorf("Materialize() = %q, %v; want %q, true", name, ok, "ATT2")
		}
	})

	t.Run("empty source", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		if _, ok := journal.NewMaterializer(fsmgr, journal.NewNopLogger()).Materialize("", "/out/media", "ATT"); ok {
			t.Error("Materialize(\"\") ok = true, want false")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddDirectory("/out/media")

		if _, ok := journal.NewMaterializer(fsmgr, journal.NewNopLogger()).Materialize("/photos/gone.jpeg", "/out/media", "ATT"); ok {
			t.Error("Materialize() ok = true for missing source, want false")
		}
		if fsmgr.Exists("/out/media/ATT.jpeg") {
			t.Error("destination created for missing source")
		}
	})

	t.Run("copy failure is logged not returned", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/a.jpeg", []byte("a"))
		fsmgr.AddDirectory("/out/media")
		fsmgr.FailCopy("/photos/a.jpeg", errors.New("permission denied"))
		logger := testutil.NewRecordingLogger()

		name, ok := journal.NewMaterializer(fsmgr, logger).Materialize("/photos/a.jpeg", "/out/media", "ATT")
		if ok || name != "" {
			t.Errorf("Materialize() = %q, %v; want \"\", false", name, ok)
		}
		if w := logger.Warnings(); len(w) != 1 {
			t.Errorf("warnings = %v, want exactly one", w)
		}
	})

	t.Run("source already at destination is kept", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/out/media/ATT.jpeg", []byte("precious"))
		logger := testutil.NewRecordingLogger()

		name, ok := journal.NewMaterializer(fsmgr, logger).Materialize("/out/media/ATT.jpeg", "/out/media", "ATT")
		if !ok || name != "ATT.jpeg" {
			t.Errorf("Materialize() = %q, %v; want %q, true", name, ok, "ATT.jpeg")
		}
		content, _ := fsmgr.ReadFile("/out/media/ATT.jpeg")
		if string(content) != "precious" {
			t.Errorf("content = %q, want %q", content, "precious")
		}
		if w := logger.Warnings(); len(w) != 0 {
			t.Errorf("unexpected warnings: %v", w)
		}
	})

	t.Run("id that is not a plain file name", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/a.jpeg", []byte("a"))
		fsmgr.AddDirectory("/out/media")

		if _, ok := journal.NewMaterializer(fsmgr, journal.NewNopLogger()).Materialize("/photos/a.jpeg", "/out/media", "../escape"); ok {
			t.Error("Materialize() ok = true for id escaping the media dir")
		}
	})
}
