package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	manifestName    = "manifest.json"
	latestKey       = "latest"
	encryptedSuffix = ".age"
	exportIDLayout  = "20060102T150405Z"
)

// Manifest describes one published export. It is stored next to the
// export's objects and written only after all of them were uploaded.
type Manifest struct {
	ExportID  string           `json:"exportId"`
	CreatedAt string           `json:"createdAt"`
	Encrypted bool             `json:"encrypted"`
	Objects   []ManifestObject `json:"objects"`
}

// ManifestObject maps a file of the export directory to its vault key.
type ManifestObject struct {
	Path string `json:"path"` // slash-separated, relative to the export directory
	Key  string `json:"key"`
	Size int64  `json:"size"` // stored size, after encryption
}

// Publisher copies a finished export directory into a vault and restores it back.
type Publisher struct {
	vault     Vault
	fsmgr     FilesystemManager
	encryptor Encryptor // nil publishes plaintext
	logger    Logger
	clock     Clock
}

// NewPublisher creates a Publisher. A nil encryptor stores objects unencrypted.
func NewPublisher(vault Vault, fsmgr FilesystemManager, encryptor Encryptor, logger Logger, clock Clock) *Publisher {
	return &Publisher{
		vault:     vault,
		fsmgr:     fsmgr,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
	}
}

// Publish uploads journal.json and every file in media/ under a new export
// ID, then the manifest, then moves the "latest" pointer to it.
func (p *Publisher) Publish(outputDir string) (*Manifest, error) {
	if _, err := p.fsmgr.Stat(filepath.Join(outputDir, DocumentFilename)); err != nil {
		return nil, fmt.Errorf("no export found in %s: %w", outputDir, err)
	}

	files := []string{DocumentFilename}
	media, err := p.fsmgr.ListFiles(filepath.Join(outputDir, MediaDirname))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	for _, name := range media {
		files = append(files, path.Join(MediaDirname, name))
	}

	now := p.clock.Now()
	manifest := &Manifest{
		ExportID:  now.UTC().Format(exportIDLayout),
		CreatedAt: FormatTime(now),
		Encrypted: p.encryptor != nil,
		Objects:   make([]ManifestObject, 0, len(files)),
	}
	p.logger.Info("publish started", "export_id", manifest.ExportID, "files", len(files), "encrypted", manifest.Encrypted)

	for _, rel := range files {
		obj, err := p.putFile(manifest.ExportID, outputDir, rel)
		if err != nil {
			return nil, fmt.Errorf("publishing %s: %w", rel, err)
		}
		p.logger.Debug("object published", "key", obj.Key, "size", obj.Size)
		manifest.Objects = append(manifest.Objects, obj)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := p.vault.PutObject(manifest.ExportID+"/"+manifestName, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("publishing manifest: %w", err)
	}
	if err := p.vault.PutObject(latestKey, strings.NewReader(manifest.ExportID), int64(len(manifest.ExportID))); err != nil {
		return nil, fmt.Errorf("updating latest pointer: %w", err)
	}

	p.logger.Info("publish complete", "export_id", manifest.ExportID, "objects", len(manifest.Objects))
	return manifest, nil
}

// putFile uploads one file of the export directory, encrypting it first when configured.
func (p *Publisher) putFile(exportID, outputDir, rel string) (ManifestObject, error) {
	key := exportID + "/" + rel
	src := filepath.Join(outputDir, filepath.FromSlash(rel))

	f, err := p.fsmgr.Open(src)
	if err != nil {
		return ManifestObject{}, fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	if p.encryptor == nil {
		info, err := p.fsmgr.Stat(src)
		if err != nil {
			return ManifestObject{}, fmt.Errorf("stat %s: %w", src, err)
		}
		if err := p.vault.PutObject(key, f, info.Size()); err != nil {
			return ManifestObject{}, err
		}
		return ManifestObject{Path: rel, Key: key, Size: info.Size()}, nil
	}

	key += encryptedSuffix
	tmp, size, cleanup, err := spool(func(w io.Writer) error {
		return p.encryptor.Encrypt(f, w)
	})
	if err != nil {
		return ManifestObject{}, fmt.Errorf("encrypting %s: %w", src, err)
	}
	defer cleanup()

	if err := p.vault.PutObject(key, tmp, size); err != nil {
		return ManifestObject{}, err
	}
	return ManifestObject{Path: rel, Key: key, Size: size}, nil
}

// Restore downloads a published export into destDir and returns the paths
// written. An empty exportID restores the most recent export. decryptCtx is
// required when the export was encrypted.
func (p *Publisher) Restore(exportID, destDir string, decryptCtx DecryptionContext) ([]string, error) {
	if exportID == "" {
		var buf bytes.Buffer
		if err := p.vault.GetObject(latestKey, &buf); err != nil {
			return nil, fmt.Errorf("reading latest export id: %w", err)
		}
		exportID = strings.TrimSpace(buf.String())
	}
	p.logger.Info("restore started", "export_id", exportID, "dest", destDir)

	var buf bytes.Buffer
	if err := p.vault.GetObject(exportID+"/"+manifestName, &buf); err != nil {
		return nil, fmt.Errorf("reading manifest for %s: %w", exportID, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(buf.Bytes(), &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest for %s: %w", exportID, err)
	}
	if manifest.Encrypted && decryptCtx == nil {
		return nil, fmt.Errorf("export %s is encrypted: a passphrase is required", exportID)
	}

	restored := make([]string, 0, len(manifest.Objects))
	for _, obj := range manifest.Objects {
		rel := filepath.FromSlash(obj.Path)
		if !filepath.IsLocal(rel) {
			return restored, fmt.Errorf("refusing to restore unsafe path %q", obj.Path)
		}
		dst := filepath.Join(destDir, rel)
		if err := p.fsmgr.MkdirAll(filepath.Dir(dst)); err != nil {
			return restored, fmt.Errorf("creating directory for %s: %w", dst, err)
		}
		if err := p.restoreObject(obj, dst, manifest.Encrypted, decryptCtx); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", obj.Path, err)
		}
		p.logger.Debug("object restored", "key", obj.Key, "path", dst)
		restored = append(restored, dst)
	}

	p.logger.Info("restore complete", "export_id", exportID, "files", len(restored))
	return restored, nil
}

func (p *Publisher) restoreObject(obj ManifestObject, dst string, encrypted bool, decryptCtx DecryptionContext) error {
	data, _, cleanup, err := spool(func(w io.Writer) error {
		return p.vault.GetObject(obj.Key, w)
	})
	if err != nil {
		return fmt.Errorf("downloading: %w", err)
	}
	defer cleanup()

	if !encrypted {
		return p.fsmgr.WriteFileAtomic(dst, data)
	}

	plain, _, cleanupPlain, err := spool(func(w io.Writer) error {
		return decryptCtx.Decrypt(data, w)
	})
	if err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	defer cleanupPlain()

	return p.fsmgr.WriteFileAtomic(dst, plain)
}

// spool runs fill against a temporary file and returns the file rewound to
// its start along with the number of bytes written. The caller must call
// cleanup once done with the file.
func spool(fill func(w io.Writer) error) (*os.File, int64, func(), error) {
	tmp, err := os.CreateTemp("", "dayone-export-*")
	if err != nil {
		return nil, 0, nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if err := fill(tmp); err != nil {
		cleanup()
		return nil, 0, nil, err
	}

	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("measuring temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, 0, nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	return tmp, size, cleanup, nil
}
