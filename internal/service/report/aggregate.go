package report

import (
	"math"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
)

// Aggregate folds records into per-bucket statistics. Buckets arrive in
// chronological order and the output preserves that order; records whose
// timestamp maps outside the enumerated buckets are ignored. Monetary
// figures are rounded to 2 decimals here and again at response assembly;
// the double rounding is intentional, historical reports did the same.
func Aggregate(g model.Granularity, buckets []model.Bucket, records []*model.Checkin) []model.PeriodStats {
	stats := make([]model.PeriodStats, len(buckets))
	index := make(map[string]int, len(buckets))
	members := make(map[string][]*model.Checkin, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
		stats[i] = model.PeriodStats{
			Period:    b.Key,
			StartDate: b.StartDate.Format(model.DateKeyFormat),
			EndDate:   b.EndDate.Format(model.DateKeyFormat),
			PaymentMethodBreakdown: map[model.PaymentMethod]int{
				model.PaymentMethodMedicalAid: 0,
				model.PaymentMethodCash:       0,
				model.PaymentMethodBoth:       0,
			},
			StatusBreakdown: map[model.CheckinStatus]int{
				model.CheckinStatusWaiting:   0,
				model.CheckinStatusAttended:  0,
				model.CheckinStatusCancelled: 0,
			},
			AmountBreakdown: map[model.PaymentMethod]float64{
				model.PaymentMethodMedicalAid: 0,
				model.PaymentMethodCash:       0,
				model.PaymentMethodBoth:       0,
			},
		}
	}

	for _, r := range records {
		key := AssignBucket(g, r.CheckinTime)
		i, ok := index[key]
		if !ok {
			continue
		}
		members[key] = append(members[key], r)

		s := &stats[i]
		s.TotalCheckins++
		s.PaymentMethodBreakdown[r.PaymentMethod]++
		s.StatusBreakdown[r.Status]++
		if r.Amount != nil {
			s.TotalAmountCollected += *r.Amount
			s.AmountBreakdown[r.PaymentMethod] += *r.Amount
		}
	}

	for i := range stats {
		s := &stats[i]
		b := buckets[i]

		var waitSum, waitCount int
		for _, r := range members[b.Key] {
			if r.Status == model.CheckinStatusAttended && r.WaitingTimeMinutes != nil {
				waitSum += *r.WaitingTimeMinutes
				waitCount++
			}
		}
		if waitCount > 0 {
			s.AverageWaitingTime = round1(float64(waitSum) / float64(waitCount))
		}

		s.TotalAmountCollected = round2(s.TotalAmountCollected)
		for m, v := range s.AmountBreakdown {
			s.AmountBreakdown[m] = round2(v)
		}
		if s.TotalCheckins > 0 {
			s.AverageAmountPerCheckin = round2(s.TotalAmountCollected / float64(s.TotalCheckins))
		}

		if g != model.GranularityDaily {
			avg := round2(float64(s.TotalCheckins) / float64(b.Days()))
			s.DailyAverage = &avg
		}
		if g == model.GranularityMonthly {
			s.PeakDay = peakDay(members[b.Key])
		}
	}
	return stats
}

// peakDay picks the calendar date with the most check-ins among the
// bucket's members, earliest date on ties.
func peakDay(members []*model.Checkin) *model.PeakDay {
	if len(members) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, r := range members {
		counts[r.CheckinTime.UTC().Format(model.DateKeyFormat)]++
	}
	var peak model.PeakDay
	for date, n := range counts {
		if n > peak.Count || (n == peak.Count && date < peak.Date) {
			peak = model.PeakDay{Date: date, Count: n}
		}
	}
	return &peak
}

// averageWaitingTime is the mean finalized waiting time over attended
// records in the whole set, used for summary assembly.
func averageWaitingTime(records []*model.Checkin) float64 {
	var sum, n int
	for _, r := range records {
		if r.Status == model.CheckinStatusAttended && r.WaitingTimeMinutes != nil {
			sum += *r.WaitingTimeMinutes
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round1(float64(sum) / float64(n))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
