package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment. Loaded
// once in main and passed down; nothing else touches os.Getenv.
type Config struct {
	Port   string
	DBPath string

	Seller string

	// External collaborators.
	FeedBaseURL    string
	RateSourceAURL string // settlement -> reserve history
	RateSourceBURL string // reserve -> local history
	HTTPTimeout    time.Duration

	// Currency trio.
	SettlementCurrency string
	ReserveCurrency    string
	LocalCurrency      string

	// Nightly batch bounds.
	BatchWindowDays int
	BatchMaxOrders  int
	// Minimum spacing between calls to the transaction feed, expressed as
	// requests per second for the injected limiter.
	FeedRatePerSec float64
}

func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		DBPath:             getenv("DB_PATH", "reconciler.db"),
		Seller:             getenv("SELLER_ID", "default"),
		FeedBaseURL:        getenv("FEED_BASE_URL", "http://localhost:9001"),
		RateSourceAURL:     getenv("RATE_SOURCE_A_URL", "http://localhost:9002"),
		RateSourceBURL:     getenv("RATE_SOURCE_B_URL", "http://localhost:9003"),
		HTTPTimeout:        getdur("HTTP_TIMEOUT", 10*time.Second),
		SettlementCurrency: getenv("SETTLEMENT_CURRENCY", "TRY"),
		ReserveCurrency:    getenv("RESERVE_CURRENCY", "USD"),
		LocalCurrency:      getenv("LOCAL_CURRENCY", "RUB"),
		BatchWindowDays:    getint("BATCH_WINDOW_DAYS", 60),
		BatchMaxOrders:     getint("BATCH_MAX_ORDERS", 50),
		FeedRatePerSec:     getfloat("FEED_RATE_PER_SEC", 2),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
