package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
)

const (
	// Classification dead-band in percent. Changes within it are noise.
	trendDeadBand = 5.0

	problemPatientThreshold = 2
	problemPatientLimit     = 10
)

// GrowthTrend is the unweighted mean of period-over-period growth
// percentages across consecutive buckets, not a single start-to-end
// comparison. Pairs with a zero previous count contribute nothing.
func GrowthTrend(counts []int) float64 {
	var sum float64
	var pairs int
	for i := 1; i < len(counts); i++ {
		prev := counts[i-1]
		if prev == 0 {
			continue
		}
		sum += float64(counts[i]-prev) / float64(prev) * 100
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return round1(sum / float64(pairs))
}

// PreviousPeriodChange compares a whole current range against the range
// of equal length immediately before it. Growth from nothing is pinned
// at +100%, two empty ranges are 0%.
func PreviousPeriodChange(current, previous int) (float64, string) {
	if previous == 0 {
		if current > 0 {
			return 100, "+100%"
		}
		return 0, "0%"
	}
	pct := round1(float64(current-previous) / float64(previous) * 100)
	return pct, fmt.Sprintf("%+.1f%%", pct)
}

// ClassifyTrend filters noise with a symmetric 5% dead-band: only moves
// strictly beyond it count as a direction.
func ClassifyTrend(pct float64) model.TrendDirection {
	switch {
	case pct > trendDeadBand:
		return model.TrendIncreasing
	case pct < -trendDeadBand:
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

// FindPeak returns the key of the bucket with the most check-ins,
// earliest key on ties. Empty input or an all-zero series has no peak.
func FindPeak(stats []model.PeriodStats) string {
	var key string
	best := 0
	for _, s := range stats {
		if s.TotalCheckins > best {
			best = s.TotalCheckins
			key = s.Period
		}
	}
	return key
}

// BusiestWeekday counts weekday occurrences across the full record set.
// Ties break toward the earlier weekday in Sunday-first order.
func BusiestWeekday(records []*model.Checkin) string {
	if len(records) == 0 {
		return ""
	}
	var counts [7]int
	for _, r := range records {
		counts[r.CheckinTime.UTC().Weekday()]++
	}
	best := 0
	for d := 1; d < 7; d++ {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return time.Weekday(best).String()
}

// ProblemPatients ranks patients by missed events: cancellations plus
// no-shows, where a no-show is a record still waiting on a date before
// asOf's date (stale waiting records are treated as never-attended).
// Only patients at or above the threshold appear, top ten by total.
func ProblemPatients(records []*model.Checkin, asOf time.Time) []model.ProblemPatient {
	today := truncateDay(asOf)
	byPatient := make(map[uuid.UUID]*model.ProblemPatient)
	for _, r := range records {
		noShow, cancelled := missedKind(r, today)
		if !noShow && !cancelled {
			continue
		}
		p := byPatient[r.PatientID]
		if p == nil {
			p = &model.ProblemPatient{PatientID: r.PatientID}
			byPatient[r.PatientID] = p
		}
		if noShow {
			p.NoShows++
		} else {
			p.Cancellations++
		}
		p.TotalMissed++
	}

	problems := make([]model.ProblemPatient, 0, len(byPatient))
	for _, p := range byPatient {
		if p.TotalMissed >= problemPatientThreshold {
			problems = append(problems, *p)
		}
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].TotalMissed != problems[j].TotalMissed {
			return problems[i].TotalMissed > problems[j].TotalMissed
		}
		return problems[i].PatientID.String() < problems[j].PatientID.String()
	})
	if len(problems) > problemPatientLimit {
		problems = problems[:problemPatientLimit]
	}
	return problems
}
