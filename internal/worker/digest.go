package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-ops-api/internal/email"
	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/service/report"
)

// Digest mails reception a summary of the previous day's check-ins each
// morning. It reuses the reporting service, so the mail shows exactly
// the numbers the daily stats endpoint would.
type Digest struct {
	reports    *report.Service
	mailer     email.Service
	logger     *zap.Logger
	recipients []string
	sendHour   int
	now        func() time.Time
}

func NewDigest(reports *report.Service, mailer email.Service, logger *zap.Logger, recipients []string, sendHour int) *Digest {
	return &Digest{
		reports:    reports,
		mailer:     mailer,
		logger:     logger,
		recipients: recipients,
		sendHour:   sendHour,
		now:        time.Now,
	}
}

func (d *Digest) Run(ctx context.Context) {
	d.logger.Info("starting digest worker",
		zap.Int("send_hour", d.sendHour),
		zap.Int("recipients", len(d.recipients)))

	for {
		wait := d.untilNextRun()
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down digest worker")
			return
		case <-time.After(wait):
		}

		if err := d.SendDigest(ctx); err != nil {
			d.logger.Error("failed to send daily digest", zap.Error(err))
		}
	}
}

// SendDigest builds and mails the digest for yesterday.
func (d *Digest) SendDigest(ctx context.Context) error {
	now := d.now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	stats, err := d.reports.DailyStats(ctx, &yesterday, &yesterday)
	if err != nil {
		return fmt.Errorf("failed to build daily stats: %w", err)
	}

	subject := fmt.Sprintf("Clinic daily digest %s", yesterday.Format(model.DateKeyFormat))
	if err := d.mailer.Send(ctx, d.recipients, subject, formatDigest(yesterday, stats)); err != nil {
		return err
	}

	d.logger.Info("sent daily digest",
		zap.String("date", yesterday.Format(model.DateKeyFormat)),
		zap.Int("total_checkins", stats.Summary.TotalCheckins))
	return nil
}

func (d *Digest) untilNextRun() time.Duration {
	now := d.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), d.sendHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func formatDigest(date time.Time, stats *model.DailyStatsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Check-in summary for %s\n\n", date.Format(model.DateKeyFormat))
	fmt.Fprintf(&b, "Total check-ins: %d\n", stats.Summary.TotalCheckins)
	fmt.Fprintf(&b, "Amount collected: %.2f\n", stats.Summary.TotalAmountCollected)
	fmt.Fprintf(&b, "Average waiting time: %.1f minutes\n", stats.Summary.AverageWaitingTime)
	fmt.Fprintf(&b, "Change vs previous day: %s\n", stats.Summary.PreviousPeriodChange)

	if len(stats.DailyData) > 0 {
		day := stats.DailyData[0]
		b.WriteString("\nBy status:\n")
		for _, status := range []model.CheckinStatus{
			model.CheckinStatusAttended,
			model.CheckinStatusWaiting,
			model.CheckinStatusCancelled,
		} {
			fmt.Fprintf(&b, "  %s: %d\n", status, day.StatusBreakdown[status])
		}
		b.WriteString("\nBy payment method:\n")
		for _, method := range []model.PaymentMethod{
			model.PaymentMethodMedicalAid,
			model.PaymentMethodCash,
			model.PaymentMethodBoth,
		} {
			fmt.Fprintf(&b, "  %s: %d (%.2f)\n", method,
				day.PaymentMethodBreakdown[method], day.AmountBreakdown[method])
		}
	}
	return b.String()
}
