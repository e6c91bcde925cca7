package model

import (
	"time"

	"github.com/google/uuid"
)

type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// DateKeyFormat is the canonical key layout for daily buckets and all
// report date fields.
const DateKeyFormat = "2006-01-02"

// Bucket is a calendar-aligned window. StartDate and EndDate are
// inclusive calendar dates at midnight UTC; a record belongs to the
// bucket when its check-in time falls in [StartDate, EndDate+24h).
// Buckets are derived per request and never persisted.
type Bucket struct {
	Key       string
	StartDate time.Time
	EndDate   time.Time
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.StartDate) && t.Before(b.EndDate.AddDate(0, 0, 1))
}

// Days returns the number of calendar days covered by the bucket.
func (b Bucket) Days() int {
	return int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
}

type PeakDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PeriodStats is the fold of one bucket's member records. Monetary
// figures are rounded to 2 decimals at aggregation time and again at
// response assembly; that double rounding is intentional and matches
// historical reports.
type PeriodStats struct {
	Period                  string                    `json:"period"`
	StartDate               string                    `json:"start_date"`
	EndDate                 string                    `json:"end_date"`
	TotalCheckins           int                       `json:"total_checkins"`
	PaymentMethodBreakdown  map[PaymentMethod]int     `json:"payment_method_breakdown"`
	StatusBreakdown         map[CheckinStatus]int     `json:"status_breakdown"`
	AverageWaitingTime      float64                   `json:"average_waiting_time"`
	DailyAverage            *float64                  `json:"daily_average,omitempty"`
	TotalAmountCollected    float64                   `json:"total_amount_collected"`
	AmountBreakdown         map[PaymentMethod]float64 `json:"amount_breakdown_by_payment_method"`
	AverageAmountPerCheckin float64                   `json:"average_amount_per_checkin"`
	PeakDay                 *PeakDay                  `json:"peak_day,omitempty"`
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type StatsSummary struct {
	TotalCheckins            int            `json:"total_checkins"`
	TotalAmountCollected     float64        `json:"total_amount_collected"`
	AverageWaitingTime       float64        `json:"average_waiting_time"`
	GrowthTrend              float64        `json:"growth_trend"`
	Trend                    TrendDirection `json:"trend"`
	PreviousPeriodChange     string         `json:"previous_period_change"`
	PeakPeriod               string         `json:"peak_period,omitempty"`
	BusiestWeekday           string         `json:"busiest_weekday,omitempty"`
	AverageCheckinsPerBucket float64        `json:"average_checkins_per_period"`
}

type DailyStatsResponse struct {
	Period    DateRange     `json:"period"`
	DailyData []PeriodStats `json:"daily_data"`
	Summary   StatsSummary  `json:"summary"`
}

type WeeklyStatsResponse struct {
	WeeklyData []PeriodStats `json:"weekly_data"`
	Summary    StatsSummary  `json:"summary"`
	DateRange  DateRange     `json:"date_range"`
}

type MonthlyStatsResponse struct {
	MonthlyData []PeriodStats `json:"monthly_data"`
	Summary     StatsSummary  `json:"summary"`
	DateRange   DateRange     `json:"date_range"`
}

// ProblemPatient counts a patient's missed events in the requested
// window. No-shows are stale waiting records on historical dates;
// cancellations are externally cancelled records.
type ProblemPatient struct {
	PatientID     uuid.UUID `json:"patient_id"`
	NoShows       int       `json:"no_shows"`
	Cancellations int       `json:"cancellations"`
	TotalMissed   int       `json:"total_missed"`
}

type MissedPeriodStats struct {
	Period        string `json:"period"`
	NoShows       int    `json:"no_shows"`
	Cancellations int    `json:"cancellations"`
	Total         int    `json:"total"`
}

type MissedTrends struct {
	GrowthTrend          float64        `json:"growth_trend"`
	Trend                TrendDirection `json:"trend"`
	PreviousPeriodChange string         `json:"previous_period_change"`
}

type NoShowStatsResponse struct {
	NoShows         int                 `json:"no_shows"`
	Cancellations   int                 `json:"cancellations"`
	ByPeriod        []MissedPeriodStats `json:"by_period"`
	ProblemPatients []ProblemPatient    `json:"problem_patients"`
	Trends          MissedTrends        `json:"trends"`
	DateRange       DateRange           `json:"date_range"`
}
