package common

import (
	"strings"

	"github.com/ulule/limiter"
)

// RateLimitAPI is the default rate for the HTTP API.
var RateLimitAPI limiter.Rate = limiter.Rate{
	Period: 1 * 60 * 1000000000, // 1 minute
	Limit:  100,
}

// RateLimitRule is the default rate plus per-client overrides; a zero-limit
// override exempts the address.
type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{
		Default:     rate,
		ByIPAddress: map[string]limiter.Rate{},
	}
}

func (r RateLimitRule) IsDefault() bool {
	return len(r.ByIPAddress) == 0
}

// ParseRateLimit parses the limiter's formatted notation, like "100-M",
// optionally prefixed with "<ip>=" for a per-client override.
func ParseRateLimit(s string) (ip string, rate limiter.Rate, err error) {
	if i := strings.Index(s, "="); i >= 0 {
		ip = s[:i]
		s = s[i+1:]
	}

	rate, err = limiter.NewRateFromFormatted(s)
	return
}
