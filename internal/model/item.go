package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a rejected field on an incoming item. It is never
// fatal to a batch: the ingest pipeline counts it against the single item.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid item: %s: %s", e.Field, e.Reason)
}

// Item is a single piece of ingested content. It is validated once at
// construction and immutable afterwards; re-submitting an ID is a duplicate,
// never an update.
type Item struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Version     int       `json:"version"`
}

// NewItem validates and normalizes the fields of an item. String fields are
// trimmed, an empty body stays absent, the timestamp is normalized to UTC and
// version defaults to 1.
func NewItem(id, source, title, body string, publishedAt time.Time, version int) (Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Item{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return Item{}, &ValidationError{Field: "source", Reason: "must not be empty"}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Item{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if publishedAt.IsZero() {
		return Item{}, &ValidationError{Field: "published_at", Reason: "must be set"}
	}
	if version <= 0 {
		version = 1
	}

	return Item{
		ID:          id,
		Source:      source,
		Title:       title,
		Body:        strings.TrimSpace(body),
		PublishedAt: publishedAt.UTC(),
		Version:     version,
	}, nil
}

// Draft is an unvalidated item as received from an external caller. The
// published_at field is the raw RFC 3339 string so that a timestamp without an
// explicit UTC offset is rejected per item instead of failing the whole batch
// at decode time.
type Draft struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	Version     int    `json:"version"`
}

// Validate turns a draft into an Item or returns a *ValidationError.
func (d Draft) Validate() (Item, error) {
	if strings.TrimSpace(d.PublishedAt) == "" {
		return Item{}, &ValidationError{Field: "published_at", Reason: "must not be empty"}
	}
	// RFC 3339 requires an explicit offset ("Z" or ±hh:mm); naive local
	// timestamps fail to parse here.
	ts, err := time.Parse(time.RFC3339, d.PublishedAt)
	if err != nil {
		return Item{}, &ValidationError{Field: "published_at", Reason: "must be RFC 3339 with explicit UTC offset"}
	}
	return NewItem(d.ID, d.Source, d.Title, d.Body, ts, d.Version)
}

// Text returns the lower-cased concatenation of title and body, the form all
// scoring strategies analyze.
func (it Item) Text() string {
	if it.Body == "" {
		return strings.ToLower(it.Title)
	}
	return strings.ToLower(it.Title + " " + it.Body)
}
