package database

import "dayone-export/internal/journal"

// The functions below are the only place that knows both the query aliases
// and the journal types. Schema drift between Day One versions belongs here.

func journalFromRow(r Row) journal.Journal {
	return journal.Journal{
		ID:   valueOr(r.Int64("id"), 0),
		UUID: r.String("uuid"),
		Name: r.String("name"),
	}
}

func entryFromRow(r Row) journal.EntryRecord {
	return journal.EntryRecord{
		ID:           valueOr(r.Int64("id"), 0),
		UUID:         r.String("uuid"),
		Text:         r.String("text"),
		MarkdownText: r.String("markdown_text"),
		CreationDate: r.Float64("creation_date"),
		ModifiedDate: r.Float64("modified_date"),
		Starred:      r.Bool("starred"),
		LocationID:   r.Int64("location_id"),
		WeatherID:    r.Int64("weather_id"),
		JournalName:  r.String("journal_name"),
		JournalUUID:  r.String("journal_uuid"),
	}
}

func locationFromRow(r Row) *journal.Location {
	return &journal.Location{
		PlaceName: r.String("place_name"),
		Locality:  r.String("locality"),
		AdminArea: r.String("admin_area"),
		Country:   r.String("country"),
		Latitude:  r.Float64("latitude"),
		Longitude: r.Float64("longitude"),
	}
}

func weatherFromRow(r Row) *journal.WeatherRecord {
	return &journal.WeatherRecord{
		Conditions:  r.String("conditions"),
		TempCelsius: r.Float64("temp_celsius"),
		Humidity:    r.Float64("humidity"),
		WindSpeed:   r.Float64("wind_speed"),
		SunriseDate: r.Float64("sunrise"),
		SunsetDate:  r.Float64("sunset"),
	}
}

func attachmentFromRow(r Row) journal.AttachmentRecord {
	return journal.AttachmentRecord{
		ID:           valueOr(r.Int64("id"), 0),
		UUID:         r.String("uuid"),
		Type:         r.String("type"),
		MD5:          r.String("md5"),
		Filename:     r.String("filename"),
		Width:        r.Int64("width"),
		Height:       r.Int64("height"),
		CreationDate: r.Float64("creation_date"),
	}
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
