package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-ops-api/internal/model"
	"github.com/jwalitptl/clinic-ops-api/internal/repository"
	reportService "github.com/jwalitptl/clinic-ops-api/internal/service/report"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
)

type fakeCheckinRepo struct {
	records []*model.Checkin
}

func (f *fakeCheckinRepo) Create(ctx context.Context, c *model.Checkin) error { return nil }

func (f *fakeCheckinRepo) Get(ctx context.Context, id uuid.UUID) (*model.Checkin, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeCheckinRepo) MarkAttended(ctx context.Context, id uuid.UUID, attendedAt time.Time, notes string) (*model.Checkin, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeCheckinRepo) HasWaiting(ctx context.Context, patientID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeCheckinRepo) ListWaiting(ctx context.Context, limit int) ([]*model.Checkin, error) {
	return nil, nil
}

func (f *fakeCheckinRepo) ListByTimeRange(ctx context.Context, from, to time.Time) ([]*model.Checkin, error) {
	var out []*model.Checkin
	for _, r := range f.records {
		if !r.CheckinTime.Before(from) && r.CheckinTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCheckinRepo) CountByTimeRange(ctx context.Context, from, to time.Time) (int, error) {
	records, _ := f.ListByTimeRange(ctx, from, to)
	return len(records), nil
}

type fakeMailer struct {
	to      []string
	subject string
	body    string
	sent    int
}

func (f *fakeMailer) Send(ctx context.Context, to []string, subject, body string) error {
	f.to = to
	f.subject = subject
	f.body = body
	f.sent++
	return nil
}

func TestSendDigest(t *testing.T) {
	now := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)
	wait := 15
	repo := &fakeCheckinRepo{records: []*model.Checkin{
		{
			ID:                 uuid.New(),
			PatientID:          uuid.New(),
			CheckinTime:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Status:             model.CheckinStatusAttended,
			PaymentMethod:      model.PaymentMethodCash,
			WaitingTimeMinutes: &wait,
		},
	}}

	reports := reportService.NewService(repo, metrics.NewWith(prometheus.NewRegistry(), "test"), func() time.Time { return now })
	mailer := &fakeMailer{}
	digest := NewDigest(reports, mailer, zap.NewNop(), []string{"reception@example.com"}, 6)
	digest.now = func() time.Time { return now }

	require.NoError(t, digest.SendDigest(context.Background()))

	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, []string{"reception@example.com"}, mailer.to)
	assert.Contains(t, mailer.subject, "2024-03-01")
	assert.Contains(t, mailer.body, "Total check-ins: 1")
	assert.Contains(t, mailer.body, "Average waiting time: 15.0 minutes")
}

func TestUntilNextRun(t *testing.T) {
	digest := NewDigest(nil, nil, zap.NewNop(), nil, 6)

	digest.now = func() time.Time { return time.Date(2024, 3, 2, 5, 0, 0, 0, time.UTC) }
	assert.Equal(t, time.Hour, digest.untilNextRun())

	// Past today's send hour, waits for tomorrow.
	digest.now = func() time.Time { return time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC) }
	assert.Equal(t, 23*time.Hour, digest.untilNextRun())
}
