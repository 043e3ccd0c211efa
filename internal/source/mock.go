package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

type mockEntry struct {
	title    string
	body     string
	hoursAgo int
}

var mockEntries = []mockEntry{
	{
		title:    "Critical Security Vulnerability in Apache Log4j",
		body:     "A zero-day vulnerability has been discovered in Apache Log4j that allows remote code execution. IT administrators are urged to patch immediately.",
		hoursAgo: 2,
	},
	{
		title:    "Major Cloud Provider Outage Affects Multiple Services",
		body:     "A widespread outage at a major cloud provider is affecting thousands of businesses worldwide. Services are gradually being restored.",
		hoursAgo: 4,
	},
	{
		title:    "New CVE-2024-1234: Windows Authentication Bypass",
		body:     "Microsoft has released a critical security patch for a Windows authentication bypass vulnerability. All Windows systems should be updated.",
		hoursAgo: 6,
	},
	{
		title:    "Ransomware Attack Targets Healthcare Systems",
		body:     "A sophisticated ransomware attack has targeted multiple healthcare systems, causing widespread disruption to patient care services.",
		hoursAgo: 8,
	},
	{
		title:    "Docker Container Escape Vulnerability Discovered",
		body:     "Security researchers have found a critical vulnerability in Docker that could allow attackers to escape container isolation.",
		hoursAgo: 12,
	},
}

// MockSource generates realistic IT-incident items without any network
// dependency. It backs development setups and the test suite.
type MockSource struct {
	name  string
	count int
	now   func() time.Time
	log   *zap.Logger
}

// NewMockSource creates a mock source emitting up to count items per fetch.
func NewMockSource(name string, count int, log *zap.Logger) *MockSource {
	if name == "" {
		name = "mock"
	}
	if count <= 0 || count > len(mockEntries) {
		count = len(mockEntries)
	}
	return &MockSource{name: name, count: count, now: time.Now, log: log}
}

func (s *MockSource) Name() string { return s.name }

// Fetch returns the sample items with timestamps relative to now.
func (s *MockSource) Fetch(_ context.Context) ([]model.Item, error) {
	base := s.now().UTC()
	items := make([]model.Item, 0, s.count)
	for i, entry := range mockEntries[:s.count] {
		item, err := model.NewItem(
			fmt.Sprintf("%s_%03d", s.name, i+1),
			s.name,
			entry.title,
			entry.body,
			base.Add(-time.Duration(entry.hoursAgo)*time.Hour),
			1,
		)
		if err != nil {
			// Sample data is static; a failure here is a programming error.
			s.log.Error("mock item invalid", zap.Int("index", i), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	s.log.Debug("mock source fetched", zap.String("source", s.name), zap.Int("items", len(items)))
	return items, nil
}
