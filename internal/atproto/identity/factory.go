package identity

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds configuration for the identity resolver
type Config struct {
	HTTPClient *http.Client
	PLCURL     string
	// RequestsPerSecond bounds directory lookups; zero disables throttling
	RequestsPerSecond float64
	Burst             int
	// FailureThreshold consecutive failures open the circuit for OpenDuration
	FailureThreshold int
	OpenDuration     time.Duration
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		PLCURL:            "https://plc.directory",
		HTTPClient:        &http.Client{Timeout: 10 * time.Second},
		RequestsPerSecond: 10,
		Burst:             20,
		FailureThreshold:  5,
		OpenDuration:      time.Minute,
	}
}

// NewResolver creates a new throttled identity resolver
func NewResolver(config Config) Resolver {
	// Apply defaults if not set
	defaults := DefaultConfig()
	if config.PLCURL == "" {
		config.PLCURL = defaults.PLCURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = defaults.HTTPClient
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.OpenDuration <= 0 {
		config.OpenDuration = defaults.OpenDuration
	}

	// Create base resolver using Indigo
	base := newBaseResolver(config.PLCURL, config.HTTPClient)

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return newLimitedResolver(base, limiter, newCircuitBreaker(config.FailureThreshold, config.OpenDuration))
}
