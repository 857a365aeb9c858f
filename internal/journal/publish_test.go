package journal_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"dayone-export/internal/journal"
	"dayone-export/internal/testutil"
)

func exportedDir(t *testing.T) *testutil.MockFilesystemManager {
	t.Helper()
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/out/journal.json", []byte(`{"entries":[]}`))
	fsmgr.AddFile("/out/media/B.png", []byte("png"))
	fsmgr.AddFile("/out/media/A.jpeg", []byte("jpeg"))
	fsmgr.AddFile("/out/media/.DS_Store", []byte("junk"))
	return fsmgr
}

func TestPublisher_Publish(t *testing.T) {
	fsmgr := exportedDir(t)
	vault := testutil.NewTestVault()

	manifest, err := journal.NewPublisher(vault, fsmgr, nil, journal.NewNopLogger(), testutil.FixedClock()).Publish("/out")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if manifest.ExportID != "20240115T103000Z" {
		t.Errorf("ExportID = %q, want %q", manifest.ExportID, "20240115T103000Z")
	}
	if manifest.Encrypted {
		t.Error("Encrypted = true without encryptor")
	}

	wantKeys := []string{
		"20240115T103000Z/journal.json",
		"20240115T103000Z/manifest.json",
		"20240115T103000Z/media/A.jpeg",
		"20240115T103000Z/media/B.png",
		"latest",
	}
	if got := vault.Keys(); strings.Join(got, ",") != strings.Join(wantKeys, ",") {
		t.Errorf("vault keys = %v, want %v", got, wantKeys)
	}

	var latest bytes.Buffer
	if err := vault.GetObject("latest", &latest); err != nil {
		t.Fatalf("GetObject(latest) error = %v", err)
	}
	if latest.String() != manifest.ExportID {
		t.Errorf("latest = %q, want %q", latest.String(), manifest.ExportID)
	}

	var stored bytes.Buffer
	if err := vault.GetObject("20240115T103000Z/manifest.json", &stored); err != nil {
		t.Fatalf("GetObject(manifest) error = %v", err)
	}
	var decoded journal.Manifest
	if err := json.Unmarshal(stored.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if len(decoded.Objects) != 3 || decoded.Objects[0].Path != "journal.json" {
		t.Errorf("manifest objects = %+v", decoded.Objects)
	}
}

func TestPublisher_PublishWithoutExport(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddDirectory("/out")
	vault := testutil.NewTestVault()

	_, err := journal.NewPublisher(vault, fsmgr, nil, journal.NewNopLogger(), testutil.FixedClock()).Publish("/out")
	if err == nil {
		t.Fatal("Publish() expected error without journal.json")
	}
	if len(vault.Keys()) != 0 {
		t.Errorf("vault keys = %v, want none", vault.Keys())
	}
}

func TestPublisher_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		encrypted bool
	}{
		{name: "plaintext"},
		{name: "encrypted", encrypted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsmgr := exportedDir(t)
			vault := testutil.NewTestVault()

			var enc journal.Encryptor
			if tt.encrypted {
				enc = testutil.NewTestEncryptor()
			}
			publisher := journal.NewPublisher(vault, fsmgr, enc, journal.NewNopLogger(), testutil.FixedClock())

			manifest, err := publisher.Publish("/out")
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if manifest.Encrypted != (enc != nil) {
				t.Errorf("Encrypted = %v", manifest.Encrypted)
			}
			if enc != nil {
				for _, obj := range manifest.Objects {
					if !strings.HasSuffix(obj.Key, ".age") {
						t.Errorf("encrypted object key %q lacks .age suffix", obj.Key)
					}
				}
			}

			var ctx journal.DecryptionContext
			if enc != nil {
				ctx, err = enc.Unlock("")
				if err != nil {
					t.Fatalf("Unlock() error = %v", err)
				}
			}

			restored, err := publisher.Restore("", "/restore", ctx)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if len(restored) != 3 {
				t.Errorf("restored = %v, want 3 files", restored)
			}

			for path, want := range map[string]string{
				"/restore/journal.json": `{"entries":[]}`,
				"/restore/media/A.jpeg": "jpeg",
				"/restore/media/B.png":  "png",
			} {
				got, ok := fsmgr.ReadFile(path)
				if !ok || string(got) != want {
					t.Errorf("%s = %q (exists %v), want %q", path, got, ok, want)
				}
			}
		})
	}
}

func TestPublisher_Restore(t *testing.T) {
	t.Run("specific export id", func(t *testing.T) {
		fsmgr := exportedDir(t)
		vault := testutil.NewTestVault()
		clock := testutil.FixedClock()
		publisher := journal.NewPublisher(vault, fsmgr, nil, journal.NewNopLogger(), clock)

		first, err := publisher.Publish("/out")
		if err != nil {
			t.Fatalf("first Publish() error = %v", err)
		}
		fsmgr.AddFile("/out/journal.json", []byte(`{"entries":[1]}`))
		clock.Advance(time.Hour)
		if _, err := publisher.Publish("/out"); err != nil {
			t.Fatalf("second Publish() error = %v", err)
		}

		if _, err := publisher.Restore(first.ExportID, "/old", nil); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		got, _ := fsmgr.ReadFile("/old/journal.json")
		if string(got) != `{"entries":[]}` {
			t.Errorf("restored journal.json = %q, want first export", got)
		}

		if _, err := publisher.Restore("", "/new", nil); err != nil {
			t.Fatalf("Restore(latest) error = %v", err)
		}
		got, _ = fsmgr.ReadFile("/new/journal.json")
		if string(got) != `{"entries":[1]}` {
			t.Errorf("restored latest journal.json = %q, want second export", got)
		}
	})

	t.Run("encrypted export needs a decryption context", func(t *testing.T) {
		fsmgr := exportedDir(t)
		publisher := journal.NewPublisher(testutil.NewTestVault(), fsmgr, testutil.NewTestEncryptor(), journal.NewNopLogger(), testutil.FixedClock())
		if _, err := publisher.Publish("/out"); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		if _, err := publisher.Restore("", "/restore", nil); err == nil {
			t.Fatal("Restore() expected error without decryption context")
		}
		if fsmgr.Exists("/restore/journal.json") {
			t.Error("files restored without decryption")
		}
	})

	t.Run("empty vault", func(t *testing.T) {
		publisher := journal.NewPublisher(testutil.NewTestVault(), testutil.NewMockFilesystemManager(), nil, journal.NewNopLogger(), testutil.FixedClock())
		_, err := publisher.Restore("", "/restore", nil)
		if !errors.Is(err, journal.ErrObjectNotFound) {
			t.Errorf("Restore() error = %v, want ErrObjectNotFound", err)
		}
	})
}
