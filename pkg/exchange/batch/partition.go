package batch

import "time"

// TimeRange is one half-open [Start, End) slice of a sync span.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) Width() time.Duration {
	return r.End.Sub(r.Start)
}

// Halve splits the range at its midpoint. Used when a query returned a
// full page, which signals the result set may be truncated.
func (r TimeRange) Halve() (TimeRange, TimeRange) {
	mid := r.Start.Add(r.Width() / 2)
	return TimeRange{Start: r.Start, End: mid}, TimeRange{Start: mid, End: r.End}
}

// SplitRanges partitions [since, until) into chronological fixed-width
// ranges. The union of the result covers the span exactly, with no gaps
// and no overlaps; an empty span yields nil.
func SplitRanges(since, until time.Time, width time.Duration) (ranges []TimeRange) {
	if width <= 0 {
		width = DefaultRangeWidth
	}

	for since.Before(until) {
		end := since.Add(width)
		if end.After(until) {
			end = until
		}

		ranges = append(ranges, TimeRange{Start: since, End: end})
		since = end
	}

	return ranges
}
