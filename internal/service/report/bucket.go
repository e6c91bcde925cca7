package report

import (
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
)

// Range policies per granularity, in calendar days. Exceeding them fails
// the request rather than degrading it.
const (
	MaxDailyRangeDays   = 365
	MaxWeeklyRangeDays  = 365
	MaxMonthlyRangeDays = 730
)

func maxRangeDays(g model.Granularity) int {
	switch g {
	case model.GranularityWeekly:
		return MaxWeeklyRangeDays
	case model.GranularityMonthly:
		return MaxMonthlyRangeDays
	default:
		return MaxDailyRangeDays
	}
}

// EnumerateBuckets produces the contiguous, gapless sequence of calendar
// buckets covering [start, end]. Empty buckets are included so downstream
// averages divide by the true bucket count. Weekly buckets follow ISO-8601:
// Monday start, key YYYY-Www, boundaries the Monday and Sunday of the week.
func EnumerateBuckets(g model.Granularity, start, end time.Time) ([]model.Bucket, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return nil, apperrors.New(apperrors.CodeInvalidDateRange, "start_date must not be after end_date")
	}

	spanDays := int(end.Sub(start).Hours()/24) + 1
	if limit := maxRangeDays(g); spanDays > limit {
		return nil, apperrors.New(apperrors.CodeDateRangeTooLarge,
			fmt.Sprintf("date range spans %d days, the maximum for %s reports is %d", spanDays, g, limit))
	}

	var buckets []model.Bucket
	switch g {
	case model.GranularityDaily:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			buckets = append(buckets, model.Bucket{
				Key:       d.Format(model.DateKeyFormat),
				StartDate: d,
				EndDate:   d,
			})
		}
	case model.GranularityWeekly:
		for monday := mondayOf(start); !monday.After(end); monday = monday.AddDate(0, 0, 7) {
			buckets = append(buckets, model.Bucket{
				Key:       isoWeekKey(monday),
				StartDate: monday,
				EndDate:   monday.AddDate(0, 0, 6),
			})
		}
	case model.GranularityMonthly:
		for first := firstOfMonth(start); !first.After(end); first = first.AddDate(0, 1, 0) {
			buckets = append(buckets, model.Bucket{
				Key:       first.Format("2006-01"),
				StartDate: first,
				EndDate:   first.AddDate(0, 1, -1),
			})
		}
	default:
		return nil, apperrors.New(apperrors.CodeInvalidPeriod, "period must be one of daily, weekly, monthly")
	}
	return buckets, nil
}

// AssignBucket maps a timestamp onto the key EnumerateBuckets would
// produce for the bucket containing it. The two must agree exactly,
// otherwise folding records produces orphan buckets.
func AssignBucket(g model.Granularity, t time.Time) string {
	t = t.UTC()
	switch g {
	case model.GranularityWeekly:
		return isoWeekKey(t)
	case model.GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format(model.DateKeyFormat)
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mondayOf(t time.Time) time.Time {
	t = truncateDay(t)
	// time.Weekday is Sunday-first; shift so Monday is offset 0.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
