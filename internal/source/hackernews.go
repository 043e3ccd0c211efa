package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

const (
	hnDefaultBaseURL   = "https://hacker-news.firebaseio.com/v0"
	hnDefaultMaxItems  = 30
	hnMaxResponseBytes = 1 << 20 // 1MB
	hnConcurrency      = 10
	hnClientTimeout    = 10 * time.Second
)

// HackerNewsSource fetches top stories from the official Firebase API.
type HackerNewsSource struct {
	baseURL  string
	maxItems int
	client   *http.Client
	log      *zap.Logger
}

// NewHackerNewsSource creates the adapter. baseURL is overridable for tests;
// empty selects the official endpoint.
func NewHackerNewsSource(baseURL string, maxItems int, log *zap.Logger) *HackerNewsSource {
	if baseURL == "" {
		baseURL = hnDefaultBaseURL
	}
	if maxItems <= 0 {
		maxItems = hnDefaultMaxItems
	}
	return &HackerNewsSource{
		baseURL:  baseURL,
		maxItems: maxItems,
		client:   &http.Client{Timeout: hnClientTimeout},
		log:      log,
	}
}

func (s *HackerNewsSource) Name() string { return "hackernews" }

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

// Fetch loads the top-story id list and resolves the stories concurrently.
func (s *HackerNewsSource) Fetch(ctx context.Context) ([]model.Item, error) {
	var ids []int
	if err := s.getJSON(ctx, s.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("hackernews: fetch top stories: %w", err)
	}
	if len(ids) > s.maxItems {
		ids = ids[:s.maxItems]
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, hnConcurrency)
		stories = make([]hnStory, 0, len(ids))
	)
	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int) {
			defer wg.Done()
			defer func() { <-sem }()

			var story hnStory
			url := fmt.Sprintf("%s/item/%d.json", s.baseURL, id)
			if err := s.getJSON(ctx, url, &story); err != nil {
				s.log.Warn("hackernews item skipped", zap.Int("id", id), zap.Error(err))
				return
			}
			if story.Title == "" || story.Type != "story" {
				return
			}
			mu.Lock()
			stories = append(stories, story)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	items := make([]model.Item, 0, len(stories))
	for _, story := range stories {
		item, err := model.NewItem(
			fmt.Sprintf("hn_%d", story.ID),
			s.Name(),
			story.Title,
			stripHTML(story.Text),
			time.Unix(story.Time, 0).UTC(),
			1,
		)
		if err != nil {
			s.log.Warn("hackernews item invalid", zap.Int("id", story.ID), zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	s.log.Debug("hackernews fetched", zap.Int("items", len(items)))
	return items, nil
}

func (s *HackerNewsSource) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, hnMaxResponseBytes)).Decode(out)
}
