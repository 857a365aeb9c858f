package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"dayone-export/internal/database"
	"dayone-export/internal/database/schema"
	"dayone-export/internal/journal"
)

// Fixture builds a Day One database file for tests. Rows are inserted through
// a writable connection; Open hands back the read-only store the exporter uses.
type Fixture struct {
	t    *testing.T
	db   *sql.DB
	Path string
}

// FixtureEntry describes a ZENTRY row. Nil fields are stored as NULL.
type FixtureEntry struct {
	UUID         string
	JournalID    *int64
	Text         *string
	MarkdownText *string
	CreationDate *float64
	ModifiedDate *float64
	Starred      *int64
	Deleted      *int64
	LocationID   *int64
	WeatherID    *int64
}

// FixtureAttachment describes a ZATTACHMENT row. Nil fields are stored as NULL.
type FixtureAttachment struct {
	UUID         string
	Type         *string
	MD5          *string
	Filename     *string
	Width        *int64
	Height       *int64
	CreationDate *float64
}

// NewFixture creates an empty database with the Day One schema under t.TempDir().
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureAt(t, filepath.Join(t.TempDir(), "DayOne.sqlite"))
}

// NewFixtureAt creates an empty database with the Day One schema at path,
// creating parent directories as needed.
func NewFixtureAt(t *testing.T, path string) *Fixture {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	db, err := database.OpenConnection(path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	if err := schema.Apply(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	f := &Fixture{t: t, db: db, Path: path}
	t.Cleanup(func() {
		f.db.Close()
	})
	return f
}

// Exec runs a statement against the fixture and returns the last insert id.
func (f *Fixture) Exec(query string, args ...any) int64 {
	f.t.Helper()
	res, err := f.db.Exec(query, args...)
	if err != nil {
		f.t.Fatalf("fixture exec %q: %v", query, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		f.t.Fatalf("fixture last insert id: %v", err)
	}
	return id
}

// AddJournal inserts a live journal and returns its primary key.
func (f *Fixture) AddJournal(uuid, name string) int64 {
	f.t.Helper()
	return f.Exec(`INSERT INTO ZJOURNAL (ZUUID, ZNAME, ZISDELETED) VALUES (?, ?, 0)`, uuid, name)
}

// AddEntry inserts an entry and returns its primary key.
func (f *Fixture) AddEntry(e FixtureEntry) int64 {
	f.t.Helper()
	return f.Exec(`
		INSERT INTO ZENTRY (ZUUID, ZJOURNAL, ZTEXT, ZMARKDOWNTEXT, ZCREATIONDATE, ZMODIFIEDDATE,
			ZSTARRED, ZISDELETED, ZLOCATION, ZWEATHER)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UUID, e.JournalID, e.Text, e.MarkdownText, e.CreationDate, e.ModifiedDate,
		e.Starred, e.Deleted, e.LocationID, e.WeatherID,
	)
}

// AddLocation inserts a location and returns its primary key.
func (f *Fixture) AddLocation(place, locality, adminArea, country string, lat, lon float64) int64 {
	f.t.Helper()
	return f.Exec(`
		INSERT INTO ZLOCATION (ZPLACENAME, ZLOCALITYNAME, ZADMINISTRATIVEAREA, ZCOUNTRY, ZLATITUDE, ZLONGITUDE)
		VALUES (?, ?, ?, ?, ?, ?)`,
		place, locality, adminArea, country, lat, lon,
	)
}

// AddWeather inserts a weather row and returns its primary key.
// sunrise and sunset are reference-epoch seconds.
func (f *Fixture) AddWeather(conditions string, tempC, humidity, windKPH, sunrise, sunset float64) int64 {
	f.t.Helper()
	return f.Exec(`
		INSERT INTO ZWEATHER (ZCONDITIONSDESCRIPTION, ZTEMPERATURECELSIUS, ZRELATIVEHUMIDITY,
			ZWINDSPEEDKPH, ZSUNRISEDATE, ZSUNSETDATE)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conditions, tempC, humidity, windKPH, sunrise, sunset,
	)
}

// AddTag attaches a tag to an entry, creating the tag if needed. A nil name
// stores a tag row with a NULL name.
func (f *Fixture) AddTag(entryID int64, name *string) {
	f.t.Helper()

	var tagID int64
	err := f.db.QueryRow(`SELECT Z_PK FROM ZTAG WHERE ZNAME IS ?`, name).Scan(&tagID)
	if err == sql.ErrNoRows {
		tagID = f.Exec(`INSERT INTO ZTAG (ZNAME) VALUES (?)`, name)
	} else if err != nil {
		f.t.Fatalf("fixture tag lookup: %v", err)
	}
	f.Exec(`INSERT INTO Z_12TAGS (Z_12ENTRIES, Z_14TAGS) VALUES (?, ?)`, entryID, tagID)
}

// AddAttachment inserts an attachment for an entry and returns its primary key.
func (f *Fixture) AddAttachment(entryID int64, a FixtureAttachment) int64 {
	f.t.Helper()
	return f.Exec(`
		INSERT INTO ZATTACHMENT (ZENTRY, ZUUID, ZTYPE, ZMD5, ZFILENAME, ZWIDTH, ZHEIGHT, ZCREATIONDATE)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entryID, a.UUID, a.Type, a.MD5, a.Filename, a.Width, a.Height, a.CreationDate,
	)
}

// Open returns a read-only store over the fixture file. The store is closed
// when the test completes.
func (f *Fixture) Open() journal.Store {
	f.t.Helper()
	store, err := database.Open(f.Path)
	if err != nil {
		f.t.Fatalf("failed to open fixture store: %v", err)
	}
	f.t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Ptr returns a pointer to v. Handy for the optional fixture columns.
func Ptr[T any](v T) *T {
	return &v
}
