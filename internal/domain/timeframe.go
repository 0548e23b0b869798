package domain

import "fmt"

// Timeframe names a lookback window. It controls both the fetch window in
// days and the chart label granularity.
type Timeframe string

const (
	Timeframe24h Timeframe = "24h"
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
	Timeframe90d Timeframe = "90d"
	Timeframe1y  Timeframe = "1y"
)

// Timeframes lists all supported values in display order.
var Timeframes = []Timeframe{Timeframe24h, Timeframe7d, Timeframe30d, Timeframe90d, Timeframe1y}

// ParseTimeframe validates a timeframe tag.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case Timeframe24h, Timeframe7d, Timeframe30d, Timeframe90d, Timeframe1y:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// LookbackDays returns the fetch window in days for the timeframe.
func (t Timeframe) LookbackDays() int {
	switch t {
	case Timeframe24h:
		return 1
	case Timeframe7d:
		return 7
	case Timeframe30d:
		return 30
	case Timeframe90d:
		return 90
	case Timeframe1y:
		return 365
	}
	return 7
}
