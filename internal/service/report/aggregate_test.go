package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
)

func record(ts time.Time, status model.CheckinStatus, method model.PaymentMethod, amount *float64, waitMinutes *int) *model.Checkin {
	return &model.Checkin{
		ID:                 uuid.New(),
		PatientID:          uuid.New(),
		CheckinTime:        ts,
		PaymentMethod:      method,
		Amount:             amount,
		Status:             status,
		WaitingTimeMinutes: waitMinutes,
	}
}

func amt(v float64) *float64 { return &v }
func mins(v int) *int { return &v }

func TestAggregateDaily(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityDaily, date(2024, 3, 1), date(2024, 3, 2))
	require.NoError(t, err)

	day1 := date(2024, 3, 1).Add(9 * time.Hour)
	records := []*model.Checkin{
		record(day1, model.CheckinStatusAttended, model.PaymentMethodCash, amt(100), mins(10)),
		record(day1.Add(time.Hour), model.CheckinStatusAttended, model.PaymentMethodMedicalAid, nil, mins(20)),
		record(day1.Add(2*time.Hour), model.CheckinStatusCancelled, model.PaymentMethodBoth, amt(50.556), nil),
	}

	stats := Aggregate(model.GranularityDaily, buckets, records)
	require.Len(t, stats, 2)

	first := stats[0]
	assert.Equal(t, "2024-03-01", first.Period)
	assert.Equal(t, 3, first.TotalCheckins)
	assert.Equal(t, 2, first.StatusBreakdown[model.CheckinStatusAttended])
	assert.Equal(t, 1, first.StatusBreakdown[model.CheckinStatusCancelled])
	assert.Equal(t, 0, first.StatusBreakdown[model.CheckinStatusWaiting])
	assert.Equal(t, 1, first.PaymentMethodBreakdown[model.PaymentMethodCash])
	assert.Equal(t, 15.0, first.AverageWaitingTime)
	assert.Equal(t, 150.56, first.TotalAmountCollected)
	assert.Equal(t, 100.0, first.AmountBreakdown[model.PaymentMethodCash])
	assert.Equal(t, 50.56, first.AmountBreakdown[model.PaymentMethodBoth])
	assert.Equal(t, 0.0, first.AmountBreakdown[model.PaymentMethodMedicalAid])
	assert.Equal(t, 50.19, first.AverageAmountPerCheckin)
	assert.Nil(t, first.DailyAverage)
	assert.Nil(t, first.PeakDay)

	second := stats[1]
	assert.Equal(t, "2024-03-02", second.Period)
	assert.Equal(t, 0, second.TotalCheckins)
	assert.Equal(t, 0.0, second.AverageWaitingTime)
	assert.Equal(t, 0.0, second.TotalAmountCollected)
	assert.Equal(t, 0.0, second.AverageAmountPerCheckin)
}

func TestAggregateCountsRoundTrip(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityWeekly, date(2024, 3, 4), date(2024, 3, 24))
	require.NoError(t, err)

	var records []*model.Checkin
	for d := 0; d < 21; d++ {
		records = append(records, record(date(2024, 3, 4).AddDate(0, 0, d), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)))
	}

	stats := Aggregate(model.GranularityWeekly, buckets, records)
	total := 0
	for _, s := range stats {
		total += s.TotalCheckins
	}
	assert.Equal(t, len(records), total)
}

func TestAggregateWeeklyDailyAverage(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityWeekly, date(2024, 3, 4), date(2024, 3, 10))
	require.NoError(t, err)

	var records []*model.Checkin
	for i := 0; i < 10; i++ {
		records = append(records, record(date(2024, 3, 5), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)))
	}

	stats := Aggregate(model.GranularityWeekly, buckets, records)
	require.Len(t, stats, 1)
	require.NotNil(t, stats[0].DailyAverage)
	assert.Equal(t, 1.43, *stats[0].DailyAverage) // 10 / 7 days
}

func TestAggregateMonthlyPeakDay(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityMonthly, date(2024, 2, 1), date(2024, 2, 29))
	require.NoError(t, err)

	records := []*model.Checkin{
		record(date(2024, 2, 5), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
		record(date(2024, 2, 12), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
		record(date(2024, 2, 12), model.CheckinStatusCancelled, model.PaymentMethodCash, amt(10), nil),
	}

	stats := Aggregate(model.GranularityMonthly, buckets, records)
	require.Len(t, stats, 1)
	require.NotNil(t, stats[0].PeakDay)
	assert.Equal(t, "2024-02-12", stats[0].PeakDay.Date)
	assert.Equal(t, 2, stats[0].PeakDay.Count)

	require.NotNil(t, stats[0].DailyAverage)
	assert.Equal(t, 0.1, *stats[0].DailyAverage) // 3 / 29 days
}

func TestAggregateMonthlyPeakDayTieEarliest(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityMonthly, date(2024, 2, 1), date(2024, 2, 29))
	require.NoError(t, err)

	records := []*model.Checkin{
		record(date(2024, 2, 20), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
		record(date(2024, 2, 5), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
	}

	stats := Aggregate(model.GranularityMonthly, buckets, records)
	require.NotNil(t, stats[0].PeakDay)
	assert.Equal(t, "2024-02-05", stats[0].PeakDay.Date)
}

func TestAggregateIgnoresWaitingTimesOfUnattended(t *testing.T) {
	buckets, err := EnumerateBuckets(model.GranularityDaily, date(2024, 3, 1), date(2024, 3, 1))
	require.NoError(t, err)

	records := []*model.Checkin{
		record(date(2024, 3, 1), model.CheckinStatusWaiting, model.PaymentMethodCash, amt(10), nil),
		record(date(2024, 3, 1), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(30)),
	}

	stats := Aggregate(model.GranularityDaily, buckets, records)
	assert.Equal(t, 30.0, stats[0].AverageWaitingTime)
}
