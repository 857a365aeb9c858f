package journal

// Journal is a live Day One journal. It is written to the export document as-is.
type Journal struct {
	ID   int64   `json:"id"`
	UUID *string `json:"uuid"`
	Name *string `json:"name"`
}

// EntryRecord is one live entry as read from the store, joined to its journal.
// Dates are seconds relative to the reference epoch (2001-01-01T00:00:00Z).
type EntryRecord struct {
	ID           int64
	UUID         *string
	Text         *string
	MarkdownText *string
	CreationDate *float64
	ModifiedDate *float64
	Starred      bool
	LocationID   *int64
	WeatherID    *int64
	JournalName  *string
	JournalUUID  *string
}

// Location is the place an entry was written.
type Location struct {
	PlaceName *string  `json:"place_name"`
	Locality  *string  `json:"locality"`
	AdminArea *string  `json:"admin_area"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// WeatherRecord is a weather row as stored; sunrise and sunset are reference-epoch seconds.
type WeatherRecord struct {
	Conditions  *string
	TempCelsius *float64
	Humidity    *float64
	WindSpeed   *float64
	SunriseDate *float64
	SunsetDate  *float64
}

// Weather is the exported form of a WeatherRecord.
type Weather struct {
	Conditions  *string  `json:"conditions"`
	TempCelsius *float64 `json:"temp_celsius"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
	Sunrise     *string  `json:"sunrise"`
	Sunset      *string  `json:"sunset"`
}

// AttachmentRecord is a media attachment row belonging to an entry.
type AttachmentRecord struct {
	ID           int64
	UUID         *string
	Type         *string
	MD5          *string
	Filename     *string
	Width        *int64
	Height       *int64
	CreationDate *float64
}

// Attachment is the exported form of an AttachmentRecord.
// Filename is the name of the copied file under media/, or nil when the
// backing file could not be located or copied.
type Attachment struct {
	UUID             *string `json:"uuid"`
	Type             *string `json:"type"`
	Filename         *string `json:"filename"`
	Width            *int64  `json:"width"`
	Height           *int64  `json:"height"`
	OriginalFilename *string `json:"original_filename"`
}

// Entry is a fully denormalized journal entry.
type Entry struct {
	UUID         *string      `json:"uuid"`
	Text         string       `json:"text"`
	CreationDate *string      `json:"creationDate"`
	ModifiedDate *string      `json:"modifiedDate"`
	Starred      bool         `json:"starred"`
	JournalName  *string      `json:"journalName"`
	JournalUUID  *string      `json:"journalUuid"`
	Tags         []string     `json:"tags"`
	Attachments  []Attachment `json:"attachments"`
	Location     *Location    `json:"location"`
	Weather      *Weather     `json:"weather"`
}

// Document is the root of journal.json.
type Document struct {
	ExportDate string    `json:"exportDate"`
	Journals   []Journal `json:"journals"`
	Entries    []Entry   `json:"entries"`
}
