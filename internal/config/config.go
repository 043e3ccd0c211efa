package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable of the process, loaded once at startup and
// passed explicitly into the components that need it.
type Config struct {
	AppPort  string
	LogLevel string

	// RelevanceThreshold is the single source of truth for what counts as
	// relevant; manual ingestion, retrieval and the scheduler all use it.
	RelevanceThreshold float64

	FetchInterval        time.Duration
	SchedulerStopTimeout time.Duration
	SeenCapacity         int

	// FilterWeights maps filter names to weights ("keyword=0.6,semantic=0.4").
	// Empty means every registered filter runs with equal weight.
	FilterWeights map[string]float64

	EmbeddingDim int
	// EncoderURL selects a remote embedding service; empty uses the
	// in-process hashing encoder.
	EncoderURL string

	// RSSFeeds maps source names to feed URLs ("arstechnica=https://...").
	RSSFeeds    map[string]string
	RSSMaxItems int

	EnableMockSource  bool
	EnableHackerNews  bool
	EnableTheRegister bool
	RedditSubreddit   string // empty disables the reddit source
	RedditLimit       int
}

// Load reads configuration from the environment, with a .env file honored
// when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:              getEnv("APP_PORT", "9000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RelevanceThreshold:   getEnvFloat("RELEVANCE_THRESHOLD", 0.1),
		FetchInterval:        getEnvDuration("FETCH_INTERVAL", 5*time.Minute),
		SchedulerStopTimeout: getEnvDuration("SCHEDULER_STOP_TIMEOUT", 5*time.Second),
		SeenCapacity:         getEnvInt("SEEN_CAPACITY", 4096),
		FilterWeights:        parsePairsFloat(getEnv("FILTER_WEIGHTS", "")),
		EmbeddingDim:         getEnvInt("EMBEDDING_DIM", 256),
		EncoderURL:           getEnv("ENCODER_URL", ""),
		RSSFeeds:             parsePairs(getEnv("RSS_FEEDS", "")),
		RSSMaxItems:          getEnvInt("RSS_MAX_ITEMS", 10),
		EnableMockSource:     getEnvBool("ENABLE_MOCK_SOURCE", true),
		EnableHackerNews:     getEnvBool("ENABLE_HACKERNEWS", true),
		EnableTheRegister:    getEnvBool("ENABLE_THEREGISTER", false),
		RedditSubreddit:      getEnv("REDDIT_SUBREDDIT", ""),
		RedditLimit:          getEnvInt("REDDIT_LIMIT", 10),
	}

	log.Printf("config loaded: port=%s threshold=%.2f interval=%s",
		cfg.AppPort, cfg.RelevanceThreshold, cfg.FetchInterval)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("config: invalid %s=%q, using %v", key, v, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("config: invalid %s=%q, using %s", key, v, def)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("config: invalid %s=%q, using %v", key, v, def)
	}
	return def
}

// parsePairs parses "name=value,name=value" lists. Malformed entries are
// dropped.
func parsePairs(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

func parsePairsFloat(raw string) map[string]float64 {
	out := map[string]float64{}
	for name, value := range parsePairs(raw) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("config: invalid weight %s=%q, dropped", name, value)
			continue
		}
		out[name] = f
	}
	return out
}
