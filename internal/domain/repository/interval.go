package repository

// Bar intervals understood by the price source.
const (
	IntervalDay   = "1d"
	IntervalWeek  = "1wk"
	IntervalMonth = "1mo"
)

// IsValidInterval returns true if iv is a supported bar interval.
func IsValidInterval(iv string) bool {
	switch iv {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default bar interval.
func DefaultInterval() string { return IntervalDay }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) string {
	if IsValidInterval(s) {
		return s
	}
	return DefaultInterval()
}
