package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettler struct {
	olderThan time.Duration
	settled   int
	err       error
}

func (f *fakeSettler) SettleStaleGatewayPayments(_ context.Context, olderThan time.Duration) (int, error) {
	f.olderThan = olderThan
	return f.settled, f.err
}

type fakeReporter struct {
	asOf time.Time
}

func (f *fakeReporter) OverdueLoans(_ context.Context, asOf time.Time) ([]*domain.OverdueLoanView, error) {
	f.asOf = asOf
	return []*domain.OverdueLoanView{{ApplicationID: 1, DueDate: asOf.AddDate(0, 0, -2), DaysOverdue: 2}}, nil
}

func TestRegisterJobs(t *testing.T) {
	j := &jobs{payments: &fakeSettler{}, reports: &fakeReporter{}}

	c := cron.New(cron.WithSeconds())
	require.NoError(t, registerJobs(c, config.Default().Scheduler, j))
	assert.Len(t, c.Entries(), 2)

	err := registerJobs(cron.New(cron.WithSeconds()), config.SchedulerConfig{SettlementSpec: "every now and then"}, j)
	assert.ErrorContains(t, err, "gateway settlement")
}

func TestJobs_CallServices(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	settler := &fakeSettler{settled: 2}
	reporter := &fakeReporter{}
	j := &jobs{payments: settler, reports: reporter, settleAge: 2 * time.Second, now: func() time.Time { return now }}

	j.settleGatewayPayments()
	j.remindOverdueLoans()

	assert.Equal(t, 2*time.Second, settler.olderThan)
	assert.Equal(t, now, reporter.asOf)

	// failures are logged, not raised
	settler.err = errors.New("db down")
	assert.NotPanics(t, j.settleGatewayPayments)
}
