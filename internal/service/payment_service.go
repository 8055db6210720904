package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segyhp/emi-ledger/internal/cache"
	"github.com/segyhp/emi-ledger/internal/config"
	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/internal/repository"
	customError "github.com/segyhp/emi-ledger/pkg/errors"
	"github.com/segyhp/emi-ledger/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const settleTimeout = 10 * time.Second

// PaymentService is the payment ledger. ApplyPayment is the only writer of
// remaining_amount and emi_status; gateway payments are recorded on their own
// channel and settle asynchronously without touching the balance.
type PaymentService struct {
	uow    repository.UnitOfWork
	locker Locker
	cache  cache.Store
	config *config.Config
	now    func() time.Time

	mu     sync.Mutex
	timers map[int64]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

func NewPaymentService(
	uow repository.UnitOfWork,
	locker Locker,
	store cache.Store,
	config *config.Config,
) *PaymentService {
	return &PaymentService{
		uow:    uow,
		locker: locker,
		cache:  store,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
		timers: make(map[int64]*time.Timer),
	}
}

func paymentLockKey(applicationID int64) string {
	return "payment:" + strconv.FormatInt(applicationID, 10)
}

// ApplyPayment records one installment against an approved, ongoing application.
// The accepted amount is capped at the remaining balance and the loan completes
// when the balance reaches zero. The payment row and the balance change commit together.
func (s *PaymentService) ApplyPayment(ctx context.Context, request *domain.ApplyPaymentRequest) (*domain.PaymentReceipt, error) {
	if request.ApplicationID <= 0 || request.UserID <= 0 {
		return nil, customError.WrapValidation("emi_application_id and user_id are required")
	}
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("amount must be greater than 0")
	}

	unlock, err := s.locker.Lock(ctx, paymentLockKey(request.ApplicationID))
	if err != nil {
		if errors.Is(err, ErrLockTimeout) {
			return nil, customError.WrapConcurrencyConflict(request.ApplicationID)
		}
		return nil, fmt.Errorf("locking application %d: %w", request.ApplicationID, err)
	}
	defer unlock()

	for attempt := 0; ; attempt++ {
		receipt, err := s.applyOnce(ctx, request)
		if errors.Is(err, repository.ErrVersionConflict) {
			if attempt < s.config.Business.PaymentMaxRetries {
				slog.DebugContext(ctx, "retrying payment after version conflict",
					"application_id", request.ApplicationID, "attempt", attempt+1)
				continue
			}
			return nil, customError.WrapConcurrencyConflict(request.ApplicationID)
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapInvalidApplicationState()
			}
			return nil, businessOrDatabase(err)
		}

		invalidateUser(ctx, s.cache, request.UserID)
		slog.InfoContext(ctx, "payment applied",
			"payment_id", receipt.PaymentID,
			"application_id", receipt.ApplicationID,
			"accepted", receipt.AcceptedAmount.String(),
			"remaining", receipt.RemainingAmount.String(),
			"emi_status", receipt.EMIStatus,
		)
		return receipt, nil
	}
}

func (s *PaymentService) applyOnce(ctx context.Context, request *domain.ApplyPaymentRequest) (*domain.PaymentReceipt, error) {
	var receipt *domain.PaymentReceipt

	err := s.uow.WithinApplicationTx(ctx, request.ApplicationID, func(r repository.Repos, app *domain.LoanApplication) error {
		if app.UserID != request.UserID || !app.IsPayable() {
			return customError.WrapInvalidApplicationState()
		}

		prior, err := r.Payments.CountByChannel(ctx, app.ID, domain.PaymentChannelLedger)
		if err != nil {
			return err
		}

		accepted := decimal.Min(request.Amount, app.RemainingAmount)
		if !accepted.IsPositive() {
			return customError.WrapInvalidApplicationState()
		}

		remaining := app.RemainingAmount.Sub(accepted)
		status := domain.EMIStatusOngoing
		if remaining.IsZero() {
			status = domain.EMIStatusCompleted
		}

		now := s.now()
		next := utils.CalculateNextDueDate(now, prior+1, s.config.Business.PaymentCycleDays)

		mode := request.PaymentMode
		if mode == "" {
			mode = domain.DefaultPaymentMode
		}

		payment := &domain.Payment{
			ApplicationID: app.ID,
			UserID:        request.UserID,
			Amount:        accepted,
			PaymentMode:   mode,
			PaymentDate:   now,
			NextPayment:   &next,
			Status:        domain.PaymentStatusSuccess,
			Channel:       domain.PaymentChannelLedger,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		app.RemainingAmount = remaining
		app.EMIStatus = status
		app.UpdatedAt = now
		if err := r.Applications.UpdateBalance(ctx, app); err != nil {
			return err
		}

		receipt = &domain.PaymentReceipt{
			PaymentID:       payment.ID,
			ApplicationID:   app.ID,
			RequestedAmount: request.Amount,
			AcceptedAmount:  accepted,
			RemainingAmount: remaining,
			EMIStatus:       status,
			NextPayment:     next,
		}
		return nil
	})

	return receipt, err
}

// SimulateGatewayPayment records a Pending gateway payment and returns at once.
// A timer settles it to Success after the configured delay.
func (s *PaymentService) SimulateGatewayPayment(ctx context.Context, request *domain.GatewayPaymentRequest) (*domain.Payment, error) {
	if request.ApplicationID <= 0 || request.UserID <= 0 {
		return nil, customError.WrapValidation("emi_application_id and user_id are required")
	}
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("payment_amount must be greater than 0")
	}

	repos := s.uow.Repos()
	app, err := repos.Applications.GetByID(ctx, request.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidApplicationState()
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if app.UserID != request.UserID {
		return nil, customError.WrapInvalidApplicationState()
	}

	now := s.now()
	payment := &domain.Payment{
		ApplicationID: app.ID,
		UserID:        request.UserID,
		Amount:        request.Amount,
		PaymentMode:   request.PaymentMode,
		PaymentDate:   now,
		Status:        domain.PaymentStatusPending,
		Channel:       domain.PaymentChannelGateway,
		Reference:     "GW-" + uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repos.Payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.scheduleSettlement(payment.ID)
	slog.InfoContext(ctx, "gateway payment accepted",
		"payment_id", payment.ID,
		"application_id", app.ID,
		"reference", payment.Reference,
	)

	return payment, nil
}

func (s *PaymentService) scheduleSettlement(paymentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		// the scheduler sweep picks it up
		return
	}

	s.wg.Add(1)
	s.timers[paymentID] = time.AfterFunc(s.config.Business.GatewaySettleDelay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		delete(s.timers, paymentID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()

		if _, err := s.SettleGatewayPayment(ctx, paymentID); err != nil {
			slog.Error("gateway settlement failed", "payment_id", paymentID, "error", err)
		}
	})
}

// SettleGatewayPayment moves a Pending gateway payment to Success. Settling an
// already settled payment returns it unchanged.
func (s *PaymentService) SettleGatewayPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	repos := s.uow.Repos()

	settled, err := repos.Payments.MarkGatewaySettled(ctx, paymentID, s.now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payment, err := repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if settled {
		invalidateUser(ctx, s.cache, payment.UserID)
		slog.InfoContext(ctx, "gateway payment settled", "payment_id", paymentID, "reference", payment.Reference)
	}
	return payment, nil
}

// SettleStaleGatewayPayments settles gateway payments left Pending for longer
// than olderThan, e.g. because the process restarted before its timer fired.
func (s *PaymentService) SettleStaleGatewayPayments(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	pending, err := s.uow.Repos().Payments.ListPendingGateway(ctx, cutoff)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	settled := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		payment, err := s.SettleGatewayPayment(ctx, p.ID)
		if err != nil {
			return settled, err
		}
		if payment.Status == domain.PaymentStatusSuccess {
			settled++
		}
	}

	return settled, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	payment, err := s.uow.Repos().Payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return payment, nil
}

// ListPayments returns every payment of an application, both channels, oldest first.
func (s *PaymentService) ListPayments(ctx context.Context, applicationID int64) ([]*domain.Payment, error) {
	repos := s.uow.Repos()

	if _, err := repos.Applications.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(applicationID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := repos.Payments.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// Close stops settlement timers that have not fired and waits for running ones.
// Payments left Pending are settled by the scheduler sweep.
func (s *PaymentService) Close() {
	s.mu.Lock()
	s.closed = true
	for id, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
