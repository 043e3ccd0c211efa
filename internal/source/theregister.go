package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

const (
	registerDomain    = "www.theregister.com"
	registerIndexURL  = "https://www.theregister.com/"
	registerTimeout   = 10 * time.Second
	registerMaxItems  = 25
	registerUserAgent = "opsfeed/1.0"
)

// RegisterSource scrapes headlines from The Register's front page. There is
// no feed contract here; the selectors track the current DOM and parsing is
// best-effort per article.
type RegisterSource struct {
	indexURL string
	allowed  string
	log      *zap.Logger
}

// NewRegisterSource creates the scraper. indexURL is overridable for tests;
// empty selects the live site.
func NewRegisterSource(indexURL string, log *zap.Logger) *RegisterSource {
	allowed := registerDomain
	if indexURL == "" {
		indexURL = registerIndexURL
	} else if host := hostOf(indexURL); host != "" {
		allowed = host
	}
	return &RegisterSource{indexURL: indexURL, allowed: allowed, log: log}
}

func (s *RegisterSource) Name() string { return "theregister" }

// Fetch visits the front page and extracts article headlines.
func (s *RegisterSource) Fetch(ctx context.Context) ([]model.Item, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowed),
		colly.UserAgent(registerUserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(registerTimeout)

	items := make([]model.Item, 0, registerMaxItems)

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(items) >= registerMaxItems {
			return
		}

		title := strings.TrimSpace(e.ChildText("h4"))
		if title == "" {
			return
		}
		link := e.Request.AbsoluteURL(e.ChildAttr("a", "href"))
		if link == "" {
			return
		}
		body := strings.TrimSpace(e.ChildText("div.standfirst"))

		published := time.Now().UTC()
		if epoch := e.ChildAttr("span.time_stamp", "data-epoch"); epoch != "" {
			if sec, err := strconv.ParseInt(epoch, 10, 64); err == nil {
				published = time.Unix(sec, 0).UTC()
			}
		}

		item, err := model.NewItem(
			fmt.Sprintf("%s_%s", s.Name(), hashString(link)),
			s.Name(),
			title,
			body,
			published,
			1,
		)
		if err != nil {
			s.log.Warn("register article skipped", zap.String("link", link), zap.Error(err))
			return
		}
		items = append(items, item)
	})

	if err := c.Visit(s.indexURL); err != nil {
		return nil, fmt.Errorf("theregister: visit %s: %w", s.indexURL, err)
	}
	c.Wait()

	s.log.Debug("theregister fetched", zap.Int("items", len(items)))
	return items, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
