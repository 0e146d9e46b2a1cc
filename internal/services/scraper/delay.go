package scraper

import (
	"math/rand"
	"time"
)

// JitterConfig shapes the delay between scraped requests. The jitter window
// widens during peak hours so traffic looks less mechanical exactly when the
// sites are busiest.
type JitterConfig struct {
	PeakWindowMs    int
	OffPeakWindowMs int
	PeakHourStart   int
	PeakHourEnd     int
}

// Delay returns baseDelay shifted by a random jitter centered on zero:
// base + uniform[0, window) - window/2, floored at zero.
func (c JitterConfig) Delay(baseDelay time.Duration, now time.Time) time.Duration {
	window := c.windowAt(now)
	if window <= 0 {
		return baseDelay
	}

	jitter := time.Duration(rand.Intn(window)) * time.Millisecond
	total := baseDelay + jitter - time.Duration(window/2)*time.Millisecond
	if total < 0 {
		return 0
	}
	return total
}

func (c JitterConfig) windowAt(now time.Time) int {
	hour := now.Hour()
	if hour >= c.PeakHourStart && hour <= c.PeakHourEnd {
		return c.PeakWindowMs
	}
	return c.OffPeakWindowMs
}
