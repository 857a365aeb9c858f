package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	"dayone-export/internal/journal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// NotFoundError is returned by Open when the database file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("database not found at %s", e.Path)
}

// SQLiteStore implements journal.Store over a Day One SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens the Day One database at path in read-only mode.
// It returns a *NotFoundError if path does not exist.
func Open(path string) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := OpenReadOnlyConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenReadOnlyConnection opens path through a SQLite URI with mode=ro and
// marks the connection query-only. No lock or transaction is ever taken.
func OpenReadOnlyConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Exports are sequential; a single connection keeps the pragma below in effect.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set query_only: %w", err)
	}

	return db, nil
}

// OpenConnection opens a writable connection. It is used for building
// fixture databases; the exporter itself always uses OpenReadOnlyConnection.
// Each connection to ":memory:" sees its own database, so in-memory callers
// should limit the pool to a single connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// readOnlyDSN builds a SQLite URI filename. The path is percent-encoded so
// that spaces (as in "Group Containers") and '?' or '#' survive.
func readOnlyDSN(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?mode=ro"
}

// Path returns the database file path, empty when wrapping an existing connection.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// queryOne returns the first row of the result, or nil when there is none.
func (s *SQLiteStore) queryOne(query string, args ...any) (Row, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Deleted rows carry ZISDELETED = 1. A NULL flag counts as not deleted.

const journalsQuery = `
	SELECT
		Z_PK AS id,
		ZUUID AS uuid,
		ZNAME AS name
	FROM ZJOURNAL
	WHERE ZISDELETED = 0 OR ZISDELETED IS NULL
	ORDER BY ZNAME`

func (s *SQLiteStore) Journals() ([]journal.Journal, error) {
	rows, err := s.query(journalsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying journals: %w", err)
	}
	journals := make([]journal.Journal, 0, len(rows))
	for _, r := range rows {
		journals = append(journals, journalFromRow(r))
	}
	return journals, nil
}

// Dates are cast to REAL so the driver hands back the stored number rather
// than a time.Time decoded against the wrong epoch.
const entriesQuery = `
	SELECT
		e.Z_PK AS id,
		e.ZUUID AS uuid,
		e.ZTEXT AS text,
		e.ZMARKDOWNTEXT AS markdown_text,
		CAST(e.ZCREATIONDATE AS REAL) AS creation_date,
		CAST(e.ZMODIFIEDDATE AS REAL) AS modified_date,
		e.ZSTARRED AS starred,
		e.ZLOCATION AS location_id,
		e.ZWEATHER AS weather_id,
		j.ZNAME AS journal_name,
		j.ZUUID AS journal_uuid
	FROM ZENTRY e
	LEFT JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
	WHERE (e.ZISDELETED = 0 OR e.ZISDELETED IS NULL)`

func (s *SQLiteStore) Entries(journalID *int64) ([]journal.EntryRecord, error) {
	query := entriesQuery
	var args []any
	if journalID != nil {
		query += " AND e.ZJOURNAL = ?"
		args = append(args, *journalID)
	}
	query += " ORDER BY e.ZCREATIONDATE DESC"

	rows, err := s.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	entries := make([]journal.EntryRecord, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, entryFromRow(r))
	}
	return entries, nil
}

const locationQuery = `
	SELECT
		ZPLACENAME AS place_name,
		ZLOCALITYNAME AS locality,
		ZADMINISTRATIVEAREA AS admin_area,
		ZCOUNTRY AS country,
		ZLATITUDE AS latitude,
		ZLONGITUDE AS longitude
	FROM ZLOCATION
	WHERE Z_PK = ?`

func (s *SQLiteStore) Location(id int64) (*journal.Location, error) {
	row, err := s.queryOne(locationQuery, id)
	if err != nil {
		return nil, fmt.Errorf("querying location %d: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}
	return locationFromRow(row), nil
}

const weatherQuery = `
	SELECT
		ZCONDITIONSDESCRIPTION AS conditions,
		ZTEMPERATURECELSIUS AS temp_celsius,
		ZRELATIVEHUMIDITY AS humidity,
		ZWINDSPEEDKPH AS wind_speed,
		CAST(ZSUNRISEDATE AS REAL) AS sunrise,
		CAST(ZSUNSETDATE AS REAL) AS sunset
	FROM ZWEATHER
	WHERE Z_PK = ?`

func (s *SQLiteStore) Weather(id int64) (*journal.WeatherRecord, error) {
	row, err := s.queryOne(weatherQuery, id)
	if err != nil {
		return nil, fmt.Errorf("querying weather %d: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}
	return weatherFromRow(row), nil
}

const tagsQuery = `
	SELECT t.ZNAME AS name
	FROM ZTAG t
	JOIN Z_12TAGS et ON t.Z_PK = et.Z_14TAGS
	WHERE et.Z_12ENTRIES = ?
	ORDER BY t.ZNAME`

func (s *SQLiteStore) Tags(entryID int64) ([]string, error) {
	rows, err := s.query(tagsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for entry %d: %w", entryID, err)
	}
	tags := make([]string, 0, len(rows))
	for _, r := range rows {
		if name := r.String("name"); name != nil {
			tags = append(tags, *name)
		}
	}
	return tags, nil
}

const attachmentsQuery = `
	SELECT
		a.Z_PK AS id,
		a.ZUUID AS uuid,
		a.ZTYPE AS type,
		a.ZMD5 AS md5,
		a.ZFILENAME AS filename,
		a.ZWIDTH AS width,
		a.ZHEIGHT AS height,
		CAST(a.ZCREATIONDATE AS REAL) AS creation_date
	FROM ZATTACHMENT a
	WHERE a.ZENTRY = ?
	ORDER BY a.ZCREATIONDATE`

func (s *SQLiteStore) Attachments(entryID int64) ([]journal.AttachmentRecord, error) {
	rows, err := s.query(attachmentsQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments for entry %d: %w", entryID, err)
	}
	attachments := make([]journal.AttachmentRecord, 0, len(rows))
	for _, r := range rows {
		attachments = append(attachments, attachmentFromRow(r))
	}
	return attachments, nil
}

// Compile-time check that SQLiteStore implements journal.Store interface
var _ journal.Store = (*SQLiteStore)(nil)
