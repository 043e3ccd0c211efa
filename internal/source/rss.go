package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

const rssDefaultMaxItems = 10

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// RSSSource fetches items from one RSS/Atom feed.
type RSSSource struct {
	name     string
	feedURL  string
	maxItems int
	parser   *gofeed.Parser
	log      *zap.Logger
}

// NewRSSSource creates an adapter for the given feed.
func NewRSSSource(name, feedURL string, maxItems int, log *zap.Logger) *RSSSource {
	if maxItems <= 0 {
		maxItems = rssDefaultMaxItems
	}
	return &RSSSource{
		name:     name,
		feedURL:  feedURL,
		maxItems: maxItems,
		parser:   gofeed.NewParser(),
		log:      log,
	}
}

func (s *RSSSource) Name() string { return s.name }

// Fetch parses the feed and maps its entries. Entries that cannot be mapped
// are skipped individually; only a failure to fetch or parse the feed itself
// is an error.
func (s *RSSSource) Fetch(ctx context.Context) ([]model.Item, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss %s: parse %s: %w", s.name, s.feedURL, err)
	}

	entries := feed.Items
	if len(entries) > s.maxItems {
		entries = entries[:s.maxItems]
	}

	items := make([]model.Item, 0, len(entries))
	for _, entry := range entries {
		item, err := s.mapEntry(entry)
		if err != nil {
			s.log.Warn("rss entry skipped", zap.String("source", s.name), zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	s.log.Debug("rss source fetched",
		zap.String("source", s.name), zap.Int("items", len(items)))
	return items, nil
}

func (s *RSSSource) mapEntry(entry *gofeed.Item) (model.Item, error) {
	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	body := entry.Description
	if body == "" {
		body = entry.Content
	}
	body = stripHTML(body)

	return model.NewItem(s.entryID(entry), s.name, entry.Title, body, published, 1)
}

// entryID prefers the feed's GUID, falls back to a hash of the link and, as
// a last resort for feeds with neither, a random id.
func (s *RSSSource) entryID(entry *gofeed.Item) string {
	if entry.GUID != "" {
		return fmt.Sprintf("%s_%s", s.name, hashString(entry.GUID))
	}
	if entry.Link != "" {
		return fmt.Sprintf("%s_%s", s.name, hashString(entry.Link))
	}
	return fmt.Sprintf("%s_%s", s.name, uuid.NewString())
}

func hashString(v string) string {
	h := sha1.Sum([]byte(v))
	return hex.EncodeToString(h[:8])
}

func stripHTML(v string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(v, " "))
}
