package grading

import (
	"time"

	"github.com/bt-lms/dashcore/internal/lms"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SubmittedAt extracts the submission timestamp in whichever encoding the
// backend chose: RFC3339-ish string, epoch seconds/millis, or the
// Jackson array form [yyyy, mm, dd, hh, mm, ss, nanos].
func SubmittedAt(rec lms.Record) (time.Time, bool) {
	for _, key := range []string{"submittedAt", "submissionDate", "date", "createdAt"} {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		if t, ok := ParseWhen(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func ParseWhen(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	case float64:
		// epoch millis vs seconds, split on magnitude
		if x > 1e12 {
			return time.UnixMilli(int64(x)).UTC(), true
		}
		if x > 0 {
			return time.Unix(int64(x), 0).UTC(), true
		}
	case []any:
		return parseDateArray(x)
	}
	return time.Time{}, false
}

func parseDateArray(parts []any) (time.Time, bool) {
	if len(parts) < 3 {
		return time.Time{}, false
	}
	nums := make([]int, 7)
	for i := 0; i < len(parts) && i < 7; i++ {
		f, ok := parts[i].(float64)
		if !ok {
			return time.Time{}, false
		}
		nums[i] = int(f)
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], nums[6], time.UTC), true
}
