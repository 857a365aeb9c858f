package journal

import "slices"

// Aggregator turns an EntryRecord into a self-contained Entry by pulling its
// location, weather, tags and attachments from the store and materializing
// attachment media. A failed lookup degrades only the affected field.
type Aggregator struct {
	store        Store
	locator      *Locator
	materializer *Materializer
	mediaDir     string
	logger       Logger
}

// NewAggregator creates an Aggregator that copies media into mediaDir.
func NewAggregator(store Store, locator *Locator, materializer *Materializer, mediaDir string, logger Logger) *Aggregator {
	return &Aggregator{
		store:        store,
		locator:      locator,
		materializer: materializer,
		mediaDir:     mediaDir,
		logger:       logger,
	}
}

// Aggregate builds the exported form of rec.
func (a *Aggregator) Aggregate(rec EntryRecord) Entry {
	return Entry{
		UUID:         rec.UUID,
		Text:         entryText(rec),
		CreationDate: FormatTimestamp(rec.CreationDate),
		ModifiedDate: FormatTimestamp(rec.ModifiedDate),
		Starred:      rec.Starred,
		JournalName:  rec.JournalName,
		JournalUUID:  rec.JournalUUID,
		Tags:         a.tags(rec),
		Attachments:  a.attachments(rec),
		Location:     a.location(rec),
		Weather:      a.weather(rec),
	}
}

// entryText prefers the plain text body, then the markdown body, then "".
func entryText(rec EntryRecord) string {
	if rec.Text != nil && *rec.Text != "" {
		return *rec.Text
	}
	if rec.MarkdownText != nil && *rec.MarkdownText != "" {
		return *rec.MarkdownText
	}
	return ""
}

func (a *Aggregator) location(rec EntryRecord) *Location {
	if rec.LocationID == nil || *rec.LocationID == 0 {
		return nil
	}
	loc, err := a.store.Location(*rec.LocationID)
	if err != nil {
		a.logger.Warn("could not load location", "entry", deref(rec.UUID), "location_id", *rec.LocationID, "error", err)
		return nil
	}
	return loc
}

func (a *Aggregator) weather(rec EntryRecord) *Weather {
	if rec.WeatherID == nil || *rec.WeatherID == 0 {
		return nil
	}
	w, err := a.store.Weather(*rec.WeatherID)
	if err != nil {
		a.logger.Warn("could not load weather", "entry", deref(rec.UUID), "weather_id", *rec.WeatherID, "error", err)
		return nil
	}
	if w == nil {
		return nil
	}
	return &Weather{
		Conditions:  w.Conditions,
		TempCelsius: w.TempCelsius,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
		Sunrise:     FormatTimestamp(w.SunriseDate),
		Sunset:      FormatTimestamp(w.SunsetDate),
	}
}

func (a *Aggregator) tags(rec EntryRecord) []string {
	tags, err := a.store.Tags(rec.ID)
	if err != nil {
		a.logger.Warn("could not load tags", "entry", deref(rec.UUID), "error", err)
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	slices.Sort(tags)
	return tags
}

func (a *Aggregator) attachments(rec EntryRecord) []Attachment {
	records, err := a.store.Attachments(rec.ID)
	if err != nil {
		a.logger.Warn("could not load attachments", "entry", deref(rec.UUID), "error", err)
		return []Attachment{}
	}

	out := make([]Attachment, 0, len(records))
	for _, att := range records {
		out = append(out, a.attachment(rec, att))
	}
	return out
}

// attachment locates and copies the media for att. The metadata is kept even
// when no file could be produced.
func (a *Aggregator) attachment(rec EntryRecord, att AttachmentRecord) Attachment {
	out := Attachment{
		UUID:             att.UUID,
		Type:             att.Type,
		Width:            att.Width,
		Height:           att.Height,
		OriginalFilename: att.Filename,
	}

	ref := AttachmentRef{UUID: deref(att.UUID), MD5: deref(att.MD5), Filename: deref(att.Filename)}
	src, ok := a.locator.Locate(ref)
	if !ok {
		a.logger.Warn("attachment media not found", "entry", deref(rec.UUID), "attachment", deref(att.UUID))
		return out
	}

	if name, ok := a.materializer.Materialize(src, a.mediaDir, ref.UUID); ok {
		out.Filename = &name
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
