package journal

import (
	"path/filepath"
)

// MediaExtensions are the extensions tried, in order, for uuid- and hash-named media files.
var MediaExtensions = []string{".jpeg", ".jpg", ".png", ".heic", ".gif", ".mp4", ".mov"}

// AttachmentRef holds the fields used to find an attachment's backing file.
// UUID is required; MD5 and Filename are fallbacks and may be empty.
type AttachmentRef struct {
	UUID     string
	MD5      string
	Filename string
}

// LocatorRule is one naming convention for media files under the media root.
// Applies reports whether the rule is usable for ref; isDir lets it check
// for directories without touching the filesystem directly. A nil Applies
// always applies. Candidates lists the paths the rule would match, in order.
type LocatorRule struct {
	Name       string
	Applies    func(root string, ref AttachmentRef, isDir func(string) bool) bool
	Candidates func(root string, ref AttachmentRef) []string
}

// DefaultLocatorRules returns the conventions Day One has used to store
// attachments, most preferred first:
//
//	<root>/<uuid><ext>
//	<root>/<uuid[:2]>/<uuid><ext>
//	<root>/<md5><ext>
//	<root>/<original filename>
func DefaultLocatorRules() []LocatorRule {
	return []LocatorRule{
		{
			Name: "flat",
			Candidates: func(root string, ref AttachmentRef) []string {
				return withExtensions(filepath.Join(root, ref.UUID))
			},
		},
		{
			Name: "sharded",
			Applies: func(root string, ref AttachmentRef, isDir func(string) bool) bool {
				return len(ref.UUID) >= 2 && isDir(filepath.Join(root, ref.UUID[:2]))
			},
			Candidates: func(root string, ref AttachmentRef) []string {
				return withExtensions(filepath.Join(root, ref.UUID[:2], ref.UUID))
			},
		},
		{
			Name: "md5",
			Applies: func(_ string, ref AttachmentRef, _ func(string) bool) bool {
				return ref.MD5 != ""
			},
			Candidates: func(root string, ref AttachmentRef) []string {
				return withExtensions(filepath.Join(root, ref.MD5))
			},
		},
		{
			Name: "filename",
			Applies: func(_ string, ref AttachmentRef, _ func(string) bool) bool {
				return ref.Filename != "" && filepath.IsLocal(ref.Filename)
			},
			Candidates: func(root string, ref AttachmentRef) []string {
				return []string{filepath.Join(root, ref.Filename)}
			},
		},
	}
}

func withExtensions(base string) []string {
	paths := make([]string, len(MediaExtensions))
	for i, ext := range MediaExtensions {
		paths[i] = base + ext
	}
	return paths
}

// Locator finds the file backing an attachment under a media root.
type Locator struct {
	root  string
	rules []LocatorRule
	fsmgr FilesystemManager
}

// NewLocator creates a Locator using DefaultLocatorRules.
func NewLocator(root string, fsmgr FilesystemManager) *Locator {
	return NewLocatorWithRules(root, fsmgr, DefaultLocatorRules())
}

// NewLocatorWithRules creates a Locator that evaluates rules in the given order.
func NewLocatorWithRules(root string, fsmgr FilesystemManager, rules []LocatorRule) *Locator {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Locator{root: root, rules: rules, fsmgr: fsmgr}
}

// Locate returns the path of the first existing file produced by the rules.
// It reports false when ref has no UUID or nothing matches.
func (l *Locator) Locate(ref AttachmentRef) (string, bool) {
	if ref.UUID == "" {
		return "", false
	}

	for _, rule := range l.rules {
		if rule.Applies != nil && !rule.Applies(l.root, ref, l.isDir) {
			continue
		}
		for _, candidate := range rule.Candidates(l.root, ref) {
			if l.isFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func (l *Locator) isDir(path string) bool {
	info, err := l.fsmgr.Stat(path)
	return err == nil && info.IsDir()
}

func (l *Locator) isFile(path string) bool {
	info, err := l.fsmgr.Stat(path)
	return err == nil && !info.IsDir()
}
