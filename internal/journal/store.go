package journal

// Store provides read access to a Day One database.
// Lookups that find no row return (nil, nil); only query failures are errors.
type Store interface {
	// Journals returns every journal that is not soft-deleted, ordered by name.
	Journals() ([]Journal, error)

	// Entries returns every entry that is not soft-deleted, newest first.
	// When journalID is non-nil only entries of that journal are returned.
	Entries(journalID *int64) ([]EntryRecord, error)

	// Location returns the location with the given id.
	Location(id int64) (*Location, error)

	// Weather returns the weather record with the given id.
	Weather(id int64) (*WeatherRecord, error)

	// Tags returns the names of the tags attached to an entry, sorted.
	Tags(entryID int64) ([]string, error)

	// Attachments returns an entry's attachments, oldest first.
	Attachments(entryID int64) ([]AttachmentRecord, error)

	// Close closes the underlying connection.
	Close() error
}
