package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
)

func TestGrowthTrendMeanOfPairwise(t *testing.T) {
	// 10 -> 20 is +100%, 20 -> 10 is -50%; mean is +25%.
	assert.Equal(t, 25.0, GrowthTrend([]int{10, 20, 10}))
}

func TestGrowthTrendSkipsZeroDenominators(t *testing.T) {
	// Only the 10 -> 15 pair counts; 0 -> 10 has no denominator.
	assert.Equal(t, 50.0, GrowthTrend([]int{0, 10, 15}))
	assert.Equal(t, 0.0, GrowthTrend([]int{0, 0, 0}))
	assert.Equal(t, 0.0, GrowthTrend([]int{5}))
	assert.Equal(t, 0.0, GrowthTrend(nil))
}

func TestPreviousPeriodChange(t *testing.T) {
	pct, s := PreviousPeriodChange(5, 0)
	assert.Equal(t, 100.0, pct)
	assert.Equal(t, "+100%", s)

	pct, s = PreviousPeriodChange(0, 0)
	assert.Equal(t, 0.0, pct)
	assert.Equal(t, "0%", s)

	pct, s = PreviousPeriodChange(110, 100)
	assert.Equal(t, 10.0, pct)
	assert.Equal(t, "+10.0%", s)

	pct, s = PreviousPeriodChange(94, 100)
	assert.Equal(t, -6.0, pct)
	assert.Equal(t, "-6.0%", s)

	pct, s = PreviousPeriodChange(0, 8)
	assert.Equal(t, -100.0, pct)
	assert.Equal(t, "-100.0%", s)
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, model.TrendIncreasing, ClassifyTrend(5.1))
	assert.Equal(t, model.TrendStable, ClassifyTrend(5.0))
	assert.Equal(t, model.TrendStable, ClassifyTrend(0))
	assert.Equal(t, model.TrendStable, ClassifyTrend(-5.0))
	assert.Equal(t, model.TrendDecreasing, ClassifyTrend(-5.1))

	// 100 -> 94 is -6%, past the dead-band, so decreasing.
	pct, _ := PreviousPeriodChange(94, 100)
	assert.Equal(t, model.TrendDecreasing, ClassifyTrend(pct))
}

func TestFindPeak(t *testing.T) {
	stats := []model.PeriodStats{
		{Period: "2024-03-01", TotalCheckins: 2},
		{Period: "2024-03-02", TotalCheckins: 5},
		{Period: "2024-03-03", TotalCheckins: 5},
	}
	assert.Equal(t, "2024-03-02", FindPeak(stats))

	assert.Equal(t, "", FindPeak(nil))
	assert.Equal(t, "", FindPeak([]model.PeriodStats{{Period: "2024-03-01"}}))
}

func TestBusiestWeekday(t *testing.T) {
	records := []*model.Checkin{
		record(date(2024, 3, 4), model.CheckinStatusAttended, model.PaymentMethodCash, nil, mins(5)),  // Monday
		record(date(2024, 3, 11), model.CheckinStatusAttended, model.PaymentMethodCash, nil, mins(5)), // Monday
		record(date(2024, 3, 5), model.CheckinStatusAttended, model.PaymentMethodCash, nil, mins(5)),  // Tuesday
	}
	assert.Equal(t, "Monday", BusiestWeekday(records))
	assert.Equal(t, "", BusiestWeekday(nil))
}

func TestBusiestWeekdayTieSundayFirst(t *testing.T) {
	// One Sunday and one Wednesday; Sunday-first ordering wins the tie.
	records := []*model.Checkin{
		record(date(2024, 3, 6), model.CheckinStatusAttended, model.PaymentMethodCash, nil, mins(5)),  // Wednesday
		record(date(2024, 3, 10), model.CheckinStatusAttended, model.PaymentMethodCash, nil, mins(5)), // Sunday
	}
	assert.Equal(t, "Sunday", BusiestWeekday(records))
}

func TestProblemPatients(t *testing.T) {
	now := date(2024, 3, 20)
	repeat := uuid.New()
	oneOff := uuid.New()

	records := []*model.Checkin{
		// Two misses: one stale waiting, one cancelled.
		record2(repeat, date(2024, 3, 1), model.CheckinStatusWaiting),
		record2(repeat, date(2024, 3, 5), model.CheckinStatusCancelled),
		// Attended visits never count against a patient.
		record2(repeat, date(2024, 3, 10), model.CheckinStatusAttended),
		// Single miss stays under the threshold.
		record2(oneOff, date(2024, 3, 2), model.CheckinStatusCancelled),
		// Waiting today is still a live queue entry, not a no-show.
		record2(oneOff, now, model.CheckinStatusWaiting),
	}

	problems := ProblemPatients(records, now)
	require.Len(t, problems, 1)
	assert.Equal(t, repeat, problems[0].PatientID)
	assert.Equal(t, 1, problems[0].NoShows)
	assert.Equal(t, 1, problems[0].Cancellations)
	assert.Equal(t, 2, problems[0].TotalMissed)
}

func TestProblemPatientsRankingAndLimit(t *testing.T) {
	now := date(2024, 3, 20)
	var records []*model.Checkin

	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
		// Patient i misses i+2 visits.
		for j := 0; j < i+2; j++ {
			records = append(records, record2(ids[i], date(2024, 3, 1).AddDate(0, 0, j), model.CheckinStatusCancelled))
		}
	}

	problems := ProblemPatients(records, now)
	require.Len(t, problems, 10)
	assert.Equal(t, ids[11], problems[0].PatientID)
	assert.Equal(t, 13, problems[0].TotalMissed)
	for i := 1; i < len(problems); i++ {
		assert.GreaterOrEqual(t, problems[i-1].TotalMissed, problems[i].TotalMissed)
	}
}

func record2(patientID uuid.UUID, ts time.Time, status model.CheckinStatus) *model.Checkin {
	return &model.Checkin{
		ID:          uuid.New(),
		PatientID:   patientID,
		CheckinTime: ts,
		Status:      status,
	}
}
