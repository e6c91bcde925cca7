package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
)

type fakeCheckinRepo struct {
	records []*model.Checkin
	listErr error
}

func (f *fakeCheckinRepo) Create(ctx context.Context, c *model.Checkin) error { return nil }

func (f *fakeCheckinRepo) Get(ctx context.Context, id uuid.UUID) (*model.Checkin, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckinRepo) MarkAttended(ctx context.Context, id uuid.UUID, attendedAt time.Time, notes string) (*model.Checkin, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckinRepo) HasWaiting(ctx context.Context, patientID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeCheckinRepo) ListWaiting(ctx context.Context, limit int) ([]*model.Checkin, error) {
	return nil, nil
}

func (f *fakeCheckinRepo) ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.Checkin, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Checkin
	for _, r := range f.records {
		if !r.CheckinTime.Before(from) && r.CheckinTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCheckinRepo) CountByTimeRange(ctx context.Context, from, to time.Time) (int, error) {
	records, err := f.ListByTimeRange(ctx, from, to)
	return len(records), err
}

func newTestService(records []*model.Checkin, now time.Time) *Service {
	repo := &fakeCheckinRepo{records: records}
	m := metrics.NewWith(prometheus.NewRegistry(), "test")
	return NewService(repo, m, func() time.Time { return now })
}

func tsPtr(t time.Time) *time.Time { return &t }

func TestDailyStatsTwoDays(t *testing.T) {
	day1 := date(2024, 3, 1)
	records := []*model.Checkin{
		record(day1.Add(8*time.Hour), model.CheckinStatusAttended, model.PaymentMethodCash, amt(100), mins(10)),
		record(day1.Add(9*time.Hour), model.CheckinStatusAttended, model.PaymentMethodMedicalAid, nil, mins(20)),
		record(day1.Add(10*time.Hour), model.CheckinStatusCancelled, model.PaymentMethodCash, amt(50), nil),
	}
	svc := newTestService(records, date(2024, 3, 10))

	resp, err := svc.DailyStats(context.Background(), tsPtr(day1), tsPtr(date(2024, 3, 2)))
	require.NoError(t, err)
	require.Len(t, resp.DailyData, 2)

	first := resp.DailyData[0]
	assert.Equal(t, 3, first.TotalCheckins)
	assert.Equal(t, 15.0, first.AverageWaitingTime)
	assert.Equal(t, 2, first.StatusBreakdown[model.CheckinStatusAttended])
	assert.Equal(t, 1, first.StatusBreakdown[model.CheckinStatusCancelled])

	second := resp.DailyData[1]
	assert.Equal(t, 0, second.TotalCheckins)
	assert.Equal(t, 0.0, second.AverageWaitingTime)

	assert.Equal(t, model.DateRange{StartDate: "2024-03-01", EndDate: "2024-03-02"}, resp.Period)
	assert.Equal(t, 3, resp.Summary.TotalCheckins)
	assert.Equal(t, 150.0, resp.Summary.TotalAmountCollected)
	assert.Equal(t, 15.0, resp.Summary.AverageWaitingTime)
	assert.Equal(t, "2024-03-01", resp.Summary.PeakPeriod)
	assert.Equal(t, 1.5, resp.Summary.AverageCheckinsPerBucket)
	// No records in the preceding two days.
	assert.Equal(t, "+100%", resp.Summary.PreviousPeriodChange)
	assert.Equal(t, model.TrendIncreasing, resp.Summary.Trend)
}

func TestDailyStatsComparesPreviousWindow(t *testing.T) {
	records := []*model.Checkin{
		// Previous window 2024-02-28..02-29.
		record(date(2024, 2, 28), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
		record(date(2024, 2, 29), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
		// Current window.
		record(date(2024, 3, 1), model.CheckinStatusAttended, model.PaymentMethodCash, amt(10), mins(5)),
	}
	svc := newTestService(records, date(2024, 3, 10))

	resp, err := svc.DailyStats(context.Background(), tsPtr(date(2024, 3, 1)), tsPtr(date(2024, 3, 2)))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.TotalCheckins)
	assert.Equal(t, "-50.0%", resp.Summary.PreviousPeriodChange)
	assert.Equal(t, model.TrendDecreasing, resp.Summary.Trend)
}

func TestDailyStatsDefaultsToLast30Days(t *testing.T) {
	svc := newTestService(nil, date(2024, 3, 30))

	resp, err := svc.DailyStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DateRange{StartDate: "2024-03-01", EndDate: "2024-03-30"}, resp.Period)
	require.Len(t, resp.DailyData, 30)
	assert.Equal(t, "0%", resp.Summary.PreviousPeriodChange)
	assert.Equal(t, model.TrendStable, resp.Summary.Trend)
	assert.Equal(t, "", resp.Summary.PeakPeriod)
}

func TestDailyStatsRejectsBadRange(t *testing.T) {
	svc := newTestService(nil, date(2024, 3, 10))

	_, err := svc.DailyStats(context.Background(), tsPtr(date(2024, 3, 2)), tsPtr(date(2024, 3, 1)))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidDateRange, apperrors.CodeOf(err))

	_, err = svc.DailyStats(context.Background(), tsPtr(date(2022, 1, 1)), tsPtr(date(2024, 1, 1)))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDateRangeTooLarge, apperrors.CodeOf(err))
}

func TestDailyStatsPropagatesStoreFailure(t *testing.T) {
	repo := &fakeCheckinRepo{listErr: errors.New("connection refused")}
	m := metrics.NewWith(prometheus.NewRegistry(), "test")
	svc := NewService(repo, m, func() time.Time { return date(2024, 3, 10) })

	_, err := svc.DailyStats(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

func TestWeeklyStatsDefaultsToTwelveWeeks(t *testing.T) {
	// 2024-03-28 is a Thursday; its week starts Monday 2024-03-25.
	svc := newTestService(nil, date(2024, 3, 28))

	resp, err := svc.WeeklyStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", resp.DateRange.StartDate)
	assert.Equal(t, "2024-03-28", resp.DateRange.EndDate)
	require.Len(t, resp.WeeklyData, 12)
	for _, week := range resp.WeeklyData {
		require.NotNil(t, week.DailyAverage)
	}
}

func TestMonthlyStatsCarriesPeakDay(t *testing.T) {
	records := []*model.Checkin{
		record(date(2024, 2, 12), model.CheckinStatusAttended, model.PaymentMethodCash, amt(20), mins(5)),
		record(date(2024, 2, 12), model.CheckinStatusAttended, model.PaymentMethodCash, amt(20), mins(5)),
		record(date(2024, 2, 20), model.CheckinStatusAttended, model.PaymentMethodCash, amt(20), mins(5)),
	}
	svc := newTestService(records, date(2024, 3, 10))

	resp, err := svc.MonthlyStats(context.Background(), tsPtr(date(2024, 2, 1)), tsPtr(date(2024, 3, 31)))
	require.NoError(t, err)
	require.Len(t, resp.MonthlyData, 2)

	feb := resp.MonthlyData[0]
	require.NotNil(t, feb.PeakDay)
	assert.Equal(t, "2024-02-12", feb.PeakDay.Date)
	assert.Equal(t, 2, feb.PeakDay.Count)

	march := resp.MonthlyData[1]
	assert.Equal(t, 0, march.TotalCheckins)
	assert.Nil(t, march.PeakDay)
}

func TestNoShowStats(t *testing.T) {
	now := date(2024, 3, 15)
	repeat := uuid.New()
	records := []*model.Checkin{
		record2(repeat, date(2024, 3, 1), model.CheckinStatusWaiting),   // stale -> no-show
		record2(repeat, date(2024, 3, 2), model.CheckinStatusCancelled),
		record2(uuid.New(), date(2024, 3, 3), model.CheckinStatusAttended),
	}
	svc := newTestService(records, now)

	resp, err := svc.NoShowStats(context.Background(), model.GranularityDaily, tsPtr(date(2024, 3, 1)), tsPtr(date(2024, 3, 5)))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NoShows)
	assert.Equal(t, 1, resp.Cancellations)
	require.Len(t, resp.ByPeriod, 5)
	assert.Equal(t, 1, resp.ByPeriod[0].NoShows)
	assert.Equal(t, 1, resp.ByPeriod[1].Cancellations)
	assert.Equal(t, 0, resp.ByPeriod[2].Total)

	require.Len(t, resp.ProblemPatients, 1)
	assert.Equal(t, repeat, resp.ProblemPatients[0].PatientID)

	// Nothing missed in the preceding window.
	assert.Equal(t, "+100%", resp.Trends.PreviousPeriodChange)
}

func TestNoShowStatsRejectsUnknownPeriod(t *testing.T) {
	svc := newTestService(nil, date(2024, 3, 15))

	_, err := svc.NoShowStats(context.Background(), model.Granularity("hourly"), nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidPeriod, apperrors.CodeOf(err))
}
