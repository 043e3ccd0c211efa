package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

const (
	redditDefaultBaseURL = "https://www.reddit.com"
	redditDefaultLimit   = 10
	redditClientTimeout  = 10 * time.Second
	redditMaxRespBytes   = 4 << 20 // 4MB
	redditUserAgent      = "opsfeed/1.0"
)

// RedditSource fetches recent posts from a subreddit through the public JSON
// listing, no API credentials required.
type RedditSource struct {
	baseURL   string
	subreddit string
	limit     int
	client    *http.Client
	log       *zap.Logger
}

// NewRedditSource creates the adapter for one subreddit. baseURL is
// overridable for tests; empty selects reddit.com.
func NewRedditSource(baseURL, subreddit string, limit int, log *zap.Logger) *RedditSource {
	if baseURL == "" {
		baseURL = redditDefaultBaseURL
	}
	if subreddit == "" {
		subreddit = "sysadmin"
	}
	if limit <= 0 {
		limit = redditDefaultLimit
	}
	return &RedditSource{
		baseURL:   baseURL,
		subreddit: subreddit,
		limit:     limit,
		client:    &http.Client{Timeout: redditClientTimeout},
		log:       log,
	}
}

func (s *RedditSource) Name() string {
	return "reddit_" + s.subreddit
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch loads the newest posts of the subreddit.
func (s *RedditSource) Fetch(ctx context.Context) ([]model.Item, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", s.baseURL, s.subreddit, s.limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit %s: build request: %w", s.subreddit, err)
	}
	// Reddit throttles requests without an identifying user agent.
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit %s: fetch: %w", s.subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit %s: unexpected status %d", s.subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(io.LimitReader(resp.Body, redditMaxRespBytes)).Decode(&listing); err != nil {
		return nil, fmt.Errorf("reddit %s: decode listing: %w", s.subreddit, err)
	}

	items := make([]model.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		item, err := model.NewItem(
			fmt.Sprintf("%s_%s", s.Name(), post.ID),
			s.Name(),
			post.Title,
			post.SelfText,
			time.Unix(int64(post.CreatedUTC), 0).UTC(),
			1,
		)
		if err != nil {
			s.log.Warn("reddit post skipped", zap.String("post", post.ID), zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	s.log.Debug("reddit fetched",
		zap.String("subreddit", s.subreddit), zap.Int("items", len(items)))
	return items, nil
}
