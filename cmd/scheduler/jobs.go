package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

type gatewaySettler interface {
	SettleStaleGatewayPayments(ctx context.Context, olderThan time.Duration) (int, error)
}

type overdueReporter interface {
	OverdueLoans(ctx context.Context, asOf time.Time) ([]*domain.OverdueLoanView, error)
}

type jobs struct {
	payments  gatewaySettler
	reports   overdueReporter
	settleAge time.Duration
	now       func() time.Time
}

func registerJobs(c *cron.Cron, cfg config.SchedulerConfig, j *jobs) error {
	if _, err := c.AddFunc(cfg.SettlementSpec, j.settleGatewayPayments); err != nil {
		return fmt.Errorf("scheduling gateway settlement %q: %w", cfg.SettlementSpec, err)
	}
	if _, err := c.AddFunc(cfg.ReminderSpec, j.remindOverdueLoans); err != nil {
		return fmt.Errorf("scheduling overdue reminders %q: %w", cfg.ReminderSpec, err)
	}
	return nil
}

// settleGatewayPayments settles gateway payments whose in-process timer was lost.
func (j *jobs) settleGatewayPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	settled, err := j.payments.SettleStaleGatewayPayments(ctx, j.settleAge)
	if err != nil {
		slog.Error("gateway settlement sweep failed", "settled", settled, "error", err)
		return
	}
	if settled > 0 {
		slog.Info("gateway settlement sweep", "settled", settled)
	}
}

// remindOverdueLoans logs one reminder per overdue loan.
func (j *jobs) remindOverdueLoans() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now
	if j.now != nil {
		now = j.now
	}

	loans, err := j.reports.OverdueLoans(ctx, now().UTC())
	if err != nil {
		slog.Error("overdue loan query failed", "error", err)
		return
	}

	for _, loan := range loans {
		slog.Info("payment reminder",
			"application_id", loan.ApplicationID,
			"user_id", loan.UserID,
			"email", loan.UserEmail,
			"emi_amount", loan.EMIAmount.StringFixed(2),
			"due_date", loan.DueDate.Format(time.DateOnly),
			"days_overdue", loan.DaysOverdue,
		)
	}
	slog.Info("overdue reminders sent", "count", len(loans))
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
