package journal_test

import (
	"testing"

	"dayone-export/internal/journal"
	"dayone-export/internal/testutil"
)

func TestLocator_Locate(t *testing.T) {
	const root = "/photos"
	const uuid = "ABCDEF0123456789"
	const md5 = "0cc175b9c0f1b6a831c399e269772661"

	tests := []struct {
		name   string
		files  []string
		dirs   []string
		ref    journal.AttachmentRef
		want   string
		wantOK bool
	}{
		{
			name:   "flat uuid with extension",
			files:  []string{"/photos/ABCDEF0123456789.jpeg"},
			ref:    journal.AttachmentRef{UUID: uuid},
			want:   "/photos/ABCDEF0123456789.jpeg",
			wantOK: true,
		},
		{
			name:   "extension order decides",
			files:  []string{"/photos/ABCDEF0123456789.png", "/photos/ABCDEF0123456789.jpg"},
			ref:    journal.AttachmentRef{UUID: uuid},
			want:   "/photos/ABCDEF0123456789.jpg",
			wantOK: true,
		},
		{
			name:   "flat wins over md5",
			files:  []string{"/photos/" + md5 + ".jpeg", "/photos/ABCDEF0123456789.heic"},
			ref:    journal.AttachmentRef{UUID: uuid, MD5: md5},
			want:   "/photos/ABCDEF0123456789.heic",
			wantOK: true,
		},
		{
			name:   "sharded by uuid prefix",
			files:  []string{"/photos/AB/ABCDEF0123456789.mov"},
			ref:    journal.AttachmentRef{UUID: uuid},
			want:   "/photos/AB/ABCDEF0123456789.mov",
			wantOK: true,
		},
		{
			name:   "md5 fallback",
			files:  []string{"/photos/" + md5 + ".gif"},
			ref:    journal.AttachmentRef{UUID: uuid, MD5: md5},
			want:   "/photos/" + md5 + ".gif",
			wantOK: true,
		},
		{
			name:   "original filename fallback",
			files:  []string{"/photos/IMG_0001.HEIC"},
			ref:    journal.AttachmentRef{UUID: uuid, Filename: "IMG_0001.HEIC"},
			want:   "/photos/IMG_0001.HEIC",
			wantOK: true,
		},
		{
			name:  "filename escaping the root is ignored",
			files: []string{"/secret.jpeg"},
			ref:   journal.AttachmentRef{UUID: uuid, Filename: "../secret.jpeg"},
		},
		{
			name:  "unknown extension is not matched",
			files: []string{"/photos/ABCDEF0123456789.tiff"},
			ref:   journal.AttachmentRef{UUID: uuid},
		},
		{
			name:  "directory named like a candidate is skipped",
			dirs:  []string{"/photos/ABCDEF0123456789.jpeg"},
			ref:   journal.AttachmentRef{UUID: uuid},
		},
		{
			name:  "missing uuid",
			files: []string{"/photos/.jpeg"},
			ref:   journal.AttachmentRef{},
		},
		{
			name: "nothing on disk",
			ref:  journal.AttachmentRef{UUID: uuid, MD5: md5, Filename: "a.jpeg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsmgr := testutil.NewMockFilesystemManager()
			fsmgr.AddDirectory(root)
			for _, f := range tt.files {
				fsmgr.AddFile(f, []byte("media"))
			}
			for _, d := range tt.dirs {
				fsmgr.AddDirectory(d)
			}

			got, ok := journal.NewLocator(root, fsmgr).Locate(tt.ref)
			if ok != tt.wantOK {
				t.Fatalf("Locate() ok = %v, want %v (path %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("Locate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocator_CustomRules(t *testing.T) {
	fsmgr := testutil.NewMockFilesystemManager()
	fsmgr.AddFile("/photos/thumbs/ABC.jpeg", []byte("thumb"))

	rules := []journal.LocatorRule{{
		Name: "thumbs",
		Candidates: func(root string, ref journal.AttachmentRef) []string {
			return []string{root + "/thumbs/" + ref.UUID + ".jpeg"}
		},
	}}

	got, ok := journal.NewLocatorWithRules("/photos", fsmgr, rules).Locate(journal.AttachmentRef{UUID: "ABC"})
	if !ok || got != "/photos/thumbs/ABC.jpeg" {
		t.Errorf("Locate() = %q, %v; want thumbs path", got, ok)
	}
}
