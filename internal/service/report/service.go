package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-ops-api/pkg/errors"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
)

// Clock supplies the current time for range defaults and no-show
// classification. Injected so reports are deterministic under test.
type Clock func() time.Time

// Service answers the reporting endpoints. Every report is a pure fold
// over a snapshot fetched once per request; concurrent requests share
// nothing and a failed fetch fails the whole report, never a partial one.
type Service struct {
	repo    repository.CheckinRepository
	metrics *metrics.Metrics
	now     Clock
}

func NewService(repo repository.CheckinRepository, m *metrics.Metrics, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, metrics: m, now: clock}
}

func (s *Service) DailyStats(ctx context.Context, start, end *time.Time) (*model.DailyStatsResponse, error) {
	s.metrics.ReportRequests.WithLabelValues(string(model.GranularityDaily)).Inc()

	from, to := s.resolveRange(model.GranularityDaily, start, end)
	buckets, err := EnumerateBuckets(model.GranularityDaily, from, to)
	if err != nil {
		return nil, err
	}

	records, prevCount, err := s.fetchWithPreviousCount(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := Aggregate(model.GranularityDaily, buckets, records)
	return &model.DailyStatsResponse{
		Period:    dateRange(from, to),
		DailyData: stats,
		Summary:   buildSummary(stats, records, prevCount),
	}, nil
}

func (s *Service) WeeklyStats(ctx context.Context, start, end *time.Time) (*model.WeeklyStatsResponse, error) {
	s.metrics.ReportRequests.WithLabelValues(string(model.GranularityWeekly)).Inc()

	from, to := s.resolveRange(model.GranularityWeekly, start, end)
	buckets, err := EnumerateBuckets(model.GranularityWeekly, from, to)
	if err != nil {
		return nil, err
	}

	records, prevCount, err := s.fetchWithPreviousCount(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := Aggregate(model.GranularityWeekly, buckets, records)
	return &model.WeeklyStatsResponse{
		WeeklyData: stats,
		Summary:    buildSummary(stats, records, prevCount),
		DateRange:  dateRange(from, to),
	}, nil
}

func (s *Service) MonthlyStats(ctx context.Context, start, end *time.Time) (*model.MonthlyStatsResponse, error) {
	s.metrics.ReportRequests.WithLabelValues(string(model.GranularityMonthly)).Inc()

	from, to := s.resolveRange(model.GranularityMonthly, start, end)
	buckets, err := EnumerateBuckets(model.GranularityMonthly, from, to)
	if err != nil {
		return nil, err
	}

	records, prevCount, err := s.fetchWithPreviousCount(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := Aggregate(model.GranularityMonthly, buckets, records)
	return &model.MonthlyStatsResponse{
		MonthlyData: stats,
		Summary:     buildSummary(stats, records, prevCount),
		DateRange:   dateRange(from, to),
	}, nil
}

// NoShowStats reports missed visits: externally cancelled check-ins plus
// no-shows, i.e. records still waiting on a date before today. The stale
// waiting convention is deliberate; those patients were never attended.
func (s *Service) NoShowStats(ctx context.Context, g model.Granularity, start, end *time.Time) (*model.NoShowStatsResponse, error) {
	if !g.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidPeriod, "period must be one of daily, weekly, monthly")
	}
	s.metrics.ReportRequests.WithLabelValues(string(g)).Inc()

	from, to := s.resolveRange(g, start, end)
	buckets, err := EnumerateBuckets(g, from, to)
	if err != nil {
		return nil, err
	}

	records, prevRecords, err := s.fetchWithPreviousRecords(ctx, from, to)
	if err != nil {
		return nil, err
	}

	today := truncateDay(s.now())

	byPeriod := make([]model.MissedPeriodStats, len(buckets))
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		byPeriod[i] = model.MissedPeriodStats{Period: b.Key}
		index[b.Key] = i
	}

	var noShows, cancellations int
	for _, r := range records {
		noShow, cancelled := missedKind(r, today)
		if !noShow && !cancelled {
			continue
		}
		if noShow {
			noShows++
		} else {
			cancellations++
		}
		if i, ok := index[AssignBucket(g, r.CheckinTime)]; ok {
			if noShow {
				byPeriod[i].NoShows++
			} else {
				byPeriod[i].Cancellations++
			}
			byPeriod[i].Total++
		}
	}

	counts := make([]int, len(byPeriod))
	for i, p := range byPeriod {
		counts[i] = p.Total
	}
	prevMissed := 0
	for _, r := range prevRecords {
		if noShow, cancelled := missedKind(r, today); noShow || cancelled {
			prevMissed++
		}
	}
	changePct, changeStr := PreviousPeriodChange(noShows+cancellations, prevMissed)

	return &model.NoShowStatsResponse{
		NoShows:         noShows,
		Cancellations:   cancellations,
		ByPeriod:        byPeriod,
		ProblemPatients: ProblemPatients(records, s.now()),
		Trends: model.MissedTrends{
			GrowthTrend:          GrowthTrend(counts),
			Trend:                ClassifyTrend(changePct),
			PreviousPeriodChange: changeStr,
		},
		DateRange: dateRange(from, to),
	}, nil
}

// resolveRange applies the per-granularity defaults: last 30 days for
// daily, last 12 ISO weeks for weekly, last 12 calendar months for
// monthly, all ending today.
func (s *Service) resolveRange(g model.Granularity, start, end *time.Time) (time.Time, time.Time) {
	to := truncateDay(s.now())
	if end != nil {
		to = truncateDay(*end)
	}
	if start != nil {
		return truncateDay(*start), to
	}
	switch g {
	case model.GranularityWeekly:
		return mondayOf(to).AddDate(0, 0, -7*11), to
	case model.GranularityMonthly:
		return firstOfMonth(to).AddDate(0, -11, 0), to
	default:
		return to.AddDate(0, 0, -29), to
	}
}

// fetchWithPreviousCount loads the window's records and, concurrently,
// the bare count for the window of equal length immediately before it.
// Both must succeed; assembly waits for the slower of the two.
func (s *Service) fetchWithPreviousCount(ctx context.Context, from, to time.Time) ([]*model.Checkin, int, error) {
	prevFrom := from.AddDate(0, 0, -windowDays(from, to))

	var (
		wg        sync.WaitGroup
		records   []*model.Checkin
		prevCount int
		curErr    error
		prevErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		records, curErr = s.repo.ListByTimeRange(ctx, from, to.AddDate(0, 0, 1))
	}()
	go func() {
		defer wg.Done()
		prevCount, prevErr = s.repo.CountByTimeRange(ctx, prevFrom, from)
	}()
	wg.Wait()

	if curErr != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list checkins: %w", curErr))
	}
	if prevErr != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to count previous period: %w", prevErr))
	}
	return records, prevCount, nil
}

// fetchWithPreviousRecords is the no-show variant: the previous window
// needs full records, not a count, because stale-waiting classification
// inspects each record's status and date.
func (s *Service) fetchWithPreviousRecords(ctx context.Context, from, to time.Time) ([]*model.Checkin, []*model.Checkin, error) {
	prevFrom := from.AddDate(0, 0, -windowDays(from, to))

	var (
		wg      sync.WaitGroup
		records []*model.Checkin
		prev    []*model.Checkin
		curErr  error
		prevErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		records, curErr = s.repo.ListByTimeRange(ctx, from, to.AddDate(0, 0, 1))
	}()
	go func() {
		defer wg.Done()
		prev, prevErr = s.repo.ListByTimeRange(ctx, prevFrom, from)
	}()
	wg.Wait()

	if curErr != nil {
		return nil, nil, apperrors.Internal(fmt.Errorf("failed to list checkins: %w", curErr))
	}
	if prevErr != nil {
		return nil, nil, apperrors.Internal(fmt.Errorf("failed to list previous period: %w", prevErr))
	}
	return records, prev, nil
}

func buildSummary(stats []model.PeriodStats, records []*model.Checkin, prevCount int) model.StatsSummary {
	var total int
	var amount float64
	counts := make([]int, len(stats))
	for i, p := range stats {
		total += p.TotalCheckins
		amount += p.TotalAmountCollected
		counts[i] = p.TotalCheckins
	}

	changePct, changeStr := PreviousPeriodChange(total, prevCount)

	var avgPerBucket float64
	if len(stats) > 0 {
		avgPerBucket = round2(float64(total) / float64(len(stats)))
	}

	return model.StatsSummary{
		TotalCheckins:            total,
		TotalAmountCollected:     round2(amount),
		AverageWaitingTime:       averageWaitingTime(records),
		GrowthTrend:              GrowthTrend(counts),
		Trend:                    ClassifyTrend(changePct),
		PreviousPeriodChange:     changeStr,
		PeakPeriod:               FindPeak(stats),
		BusiestWeekday:           BusiestWeekday(records),
		AverageCheckinsPerBucket: avgPerBucket,
	}
}

func windowDays(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

func dateRange(from, to time.Time) model.DateRange {
	return model.DateRange{
		StartDate: from.Format(model.DateKeyFormat),
		EndDate:   to.Format(model.DateKeyFormat),
	}
}

// missedKind classifies a record as a missed visit: cancelled outright,
// or a no-show when it is still waiting on a date before today.
func missedKind(r *model.Checkin, today time.Time) (noShow, cancelled bool) {
	switch r.Status {
	case model.CheckinStatusCancelled:
		return false, true
	case model.CheckinStatusWaiting:
		return truncateDay(r.CheckinTime).Before(today), false
	}
	return false, false
}
