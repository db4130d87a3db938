package disbursement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/internal/distribution"
	"github.com/tracksplit/tracksplit-backend/internal/payments"
	"github.com/tracksplit/tracksplit-backend/internal/splits"
	"github.com/tracksplit/tracksplit-backend/internal/works"
	dbpkg "github.com/tracksplit/tracksplit-backend/pkg/db"
	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/metrics"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox/payloads"
	"github.com/tracksplit/tracksplit-backend/pkg/pagination"
)

const redriveLockTTL = 10 * time.Minute

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type railExecutor interface {
	Supports(rail enums.PaymentRail) bool
	Execute(ctx context.Context, rail enums.PaymentRail, req payments.PayoutRequest) (payments.PayoutResult, error)
}

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	PurchaseDedupeKey(purchaseID string) string
	RedriveLockKey(transactionID string) string
}

// PurchaseInput is one license purchase ready for disbursement.
type PurchaseInput struct {
	PurchaseID uuid.UUID
	WorkID     uuid.UUID
	BuyerID    uuid.UUID
	TotalCents int64
	Currency   enums.Currency
	Rail       enums.PaymentRail
	OccurredAt time.Time
}

// Service drives a purchase through validation, calculation, rail execution
// and aggregation, and owns the redrive path for failed lines.
type Service interface {
	// SubmitPurchase returns the transaction record and whether this call
	// created it; replays of an already processed purchase id return the
	// original record with created false.
	SubmitPurchase(ctx context.Context, in PurchaseInput) (*models.TransactionRecord, bool, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error)
	ListRecipientPayouts(ctx context.Context, recipientID uuid.UUID, params pagination.Params) ([]models.DistributionLine, string, error)
	Redrive(ctx context.Context, transactionID uuid.UUID, requestedBy uuid.UUID) (*models.TransactionRecord, error)
}

type service struct {
	repo       Repository
	splitsRepo splits.Repository
	worksRepo  works.Repository
	rails      railExecutor
	tx         txRunner
	events     outboxPublisher
	dedupe     dedupeStore
	metrics    *metrics.DisbursementMetrics
	logg       *logger.Logger
	dedupeTTL  time.Duration
}

// NewService wires the disbursement engine.
func NewService(
	repo Repository,
	splitsRepo splits.Repository,
	worksRepo works.Repository,
	rails railExecutor,
	tx txRunner,
	events outboxPublisher,
	dedupe dedupeStore,
	m *metrics.DisbursementMetrics,
	logg *logger.Logger,
	dedupeTTL time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("disbursement repository required")
	}
	if splitsRepo == nil {
		return nil, fmt.Errorf("splits repository required")
	}
	if worksRepo == nil {
		return nil, fmt.Errorf("works repository required")
	}
	if rails == nil {
		return nil, fmt.Errorf("rail executor required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		splitsRepo: splitsRepo,
		worksRepo:  worksRepo,
		rails:      rails,
		tx:         tx,
		events:     events,
		dedupe:     dedupe,
		metrics:    m,
		logg:       logg,
		dedupeTTL:  dedupeTTL,
	}, nil
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return record, nil
}

func (s *service) ListRecipientPayouts(ctx context.Context, recipientID uuid.UUID, params pagination.Params) ([]models.DistributionLine, string, error) {
	if recipientID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	lines, err := s.repo.ListLinesByRecipient(ctx, recipientID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[len(lines)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return lines, next, nil
}

// SubmitPurchase runs the full pipeline for one purchase. Split validation
// failures still produce an audit record (with no lines) before the coded
// error is returned; duplicate purchase ids short-circuit to the original
// transaction.
func (s *service) SubmitPurchase(ctx context.Context, in PurchaseInput) (*models.TransactionRecord, bool, error) {
	started := time.Now()
	if err := s.checkInput(in); err != nil {
		return nil, false, err
	}

	logCtx := s.logg.WithPurchaseID(s.logg.WithWorkID(ctx, in.WorkID.String()), in.PurchaseID.String())

	dedupeKey := s.dedupe.PurchaseDedupeKey(in.PurchaseID.String())
	acquired, err := s.dedupe.SetNX(ctx, dedupeKey, "1", s.dedupeTTL)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purchase dedupe check failed")
	}
	if !acquired {
		existing, err := s.repo.GetByPurchaseID(ctx, in.PurchaseID)
		if err == nil {
			s.logg.Info(logCtx, "duplicate purchase, returning original transaction")
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
		// the guard key outlived a submission that never reached the
		// database, fall through and process normally
	}

	ledger, err := s.splitsRepo.GetByWorkID(ctx, in.WorkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.releaseDedupe(ctx, dedupeKey)
			return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "no split ledger for work")
		}
		s.releaseDedupe(ctx, dedupeKey)
		return nil, false, err
	}

	validation := splits.Validate(entryInputs(ledger.Entries))
	if !validation.Valid {
		record, err := s.recordRejection(ctx, in, validation)
		if err != nil {
			s.releaseDedupe(ctx, dedupeKey)
			return nil, false, err
		}
		s.metrics.IncRejected()
		s.logg.Warn(logCtx, "purchase rejected: split failed validation")
		return record, false, pkgerrors.New(pkgerrors.CodeValidation, "split failed validation").WithDetails(validation)
	}

	calcLines, err := distribution.Calculate(in.TotalCents, ledger.Entries)
	if err != nil {
		s.releaseDedupe(ctx, dedupeKey)
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeCalculation, err, "distribution calculation failed")
	}

	record := buildRecord(in, validation, calcLines)
	wasLocked := ledger.Locked()
	now := time.Now()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateRecord(ctx, record); err != nil {
			return err
		}
		for i := range record.Distributions {
			line := &record.Distributions[i]
			if err := txRepo.InsertPayoutEvent(ctx, &models.PayoutEvent{
				ID:            uuid.New(),
				TransactionID: record.ID,
				LineID:        line.ID,
				RecipientID:   line.RecipientID,
				Type:          enums.PayoutEventRequested,
				AmountCents:   line.AmountCents,
				Rail:          record.RequestedRail,
			}); err != nil {
				return err
			}
		}
		if err := s.splitsRepo.WithTx(tx).Lock(ctx, ledger.ID, now); err != nil {
			return err
		}
		if !wasLocked {
			// two first purchases of the same work can race past the
			// wasLocked check; the outbox unique index settles the tie
			return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventSplitLedgerLocked,
				AggregateType: enums.AggregateSplitLedger,
				AggregateID:   ledger.ID,
				Version:       1,
				Data: payloads.SplitLedgerLockedEvent{
					LedgerID: ledger.ID,
					WorkID:   in.WorkID,
					LockedAt: now,
				},
			})
		}
		return nil
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_transaction_records_purchase_id") {
			existing, lookupErr := s.repo.GetByPurchaseID(ctx, in.PurchaseID)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		s.releaseDedupe(ctx, dedupeKey)
		return nil, false, err
	}

	logCtx = s.logg.WithTransactionID(logCtx, record.ID.String())
	s.logg.Info(logCtx, "transaction record created, executing payouts")

	outcomes := s.executeLines(ctx, record)
	final, err := s.settleOutcomes(ctx, record, outcomes, false)
	if err != nil {
		return nil, false, err
	}

	s.metrics.ObserveDuration(final.OverallStatus.String(), time.Since(started))
	s.metrics.IncTransaction(final.OverallStatus.String())
	s.logg.Info(s.logg.WithField(logCtx, "overall_status", final.OverallStatus), "disbursement finished")
	return final, true, nil
}

// Redrive replays only the failed lines of a terminal transaction. A redis
// lock keeps two operators from redriving the same transaction at once.
func (s *service) Redrive(ctx context.Context, transactionID uuid.UUID, requestedBy uuid.UUID) (*models.TransactionRecord, error) {
	record, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !record.OverallStatus.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is still processing")
	}

	var failed []*models.DistributionLine
	for i := range record.Distributions {
		if record.Distributions[i].Status == enums.DistributionStatusFailed {
			failed = append(failed, &record.Distributions[i])
		}
	}
	if len(failed) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction has no failed lines")
	}

	lockKey := s.dedupe.RedriveLockKey(transactionID.String())
	acquired, err := s.dedupe.SetNX(ctx, lockKey, "1", redriveLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redrive lock check failed")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "redrive already in progress")
	}
	defer s.releaseDedupe(ctx, lockKey)

	logCtx := s.logg.WithTransactionID(ctx, transactionID.String())
	s.logg.Info(s.logg.WithField(logCtx, "failed_lines", len(failed)), "redriving failed lines")

	redrivenIDs := make([]uuid.UUID, len(failed))
	for i, line := range failed {
		redrivenIDs[i] = line.ID
	}

	outcomes := s.executeSubset(ctx, record, failed)
	final, err := s.settleOutcomes(ctx, record, outcomes, true)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, line := range failed {
			if err := txRepo.InsertPayoutEvent(ctx, &models.PayoutEvent{
				ID:            uuid.New(),
				TransactionID: record.ID,
				LineID:        line.ID,
				RecipientID:   line.RecipientID,
				Type:          enums.PayoutEventRedriven,
				AmountCents:   line.AmountCents,
				Rail:          record.RequestedRail,
			}); err != nil {
				return err
			}
		}
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionRedriven,
			AggregateType: enums.AggregateTransactionRecord,
			AggregateID:   record.ID,
			Version:       1,
			Data: payloads.TransactionRedrivenEvent{
				TransactionID:  record.ID,
				RedrivenLineID: redrivenIDs,
				RequestedBy:    requestedBy,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransaction(final.OverallStatus.String())
	s.logg.Info(s.logg.WithField(logCtx, "overall_status", final.OverallStatus), "redrive finished")
	return final, nil
}

func (s *service) checkInput(in PurchaseInput) error {
	switch {
	case in.PurchaseID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase id is required")
	case in.WorkID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "work id is required")
	case in.BuyerID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	case in.TotalCents <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase total must be positive")
	case !in.Currency.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", in.Currency))
	case !in.Rail.IsValid() || !s.rails.Supports(in.Rail):
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment rail %q", in.Rail))
	}
	if in.Rail == enums.PaymentRailCard && in.Currency != enums.CurrencyUSD {
		return pkgerrors.New(pkgerrors.CodeValidation, "card rail settles USD only")
	}
	if in.Rail == enums.PaymentRailOnChain && in.Currency == enums.CurrencyUSD {
		return pkgerrors.New(pkgerrors.CodeValidation, "on-chain rail settles USDC or ETH")
	}
	return nil
}

// recordRejection writes the audit record for a purchase whose split failed
// validation. The record carries the validation report and no lines.
func (s *service) recordRejection(ctx context.Context, in PurchaseInput, validation splits.ValidationResult) (*models.TransactionRecord, error) {
	report, err := json.Marshal(validation)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	record := &models.TransactionRecord{
		ID:               uuid.New(),
		PurchaseID:       in.PurchaseID,
		WorkID:           in.WorkID,
		BuyerID:          in.BuyerID,
		TotalCents:       in.TotalCents,
		Currency:         in.Currency,
		RequestedRail:    in.Rail,
		ValidationScore:  validation.Score,
		ValidationErrors: report,
		OverallStatus:    enums.TransactionStatusFailed,
		OccurredAt:       occurredAt(in),
		CompletedAt:      &now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateRecord(ctx, record); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFailed,
			AggregateType: enums.AggregateTransactionRecord,
			AggregateID:   record.ID,
			Version:       1,
			Data:          outcomePayload(record),
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_transaction_records_purchase_id") {
			return s.repo.GetByPurchaseID(ctx, in.PurchaseID)
		}
		return nil, err
	}
	return record, nil
}

type lineOutcome struct {
	line   *models.DistributionLine
	result payments.PayoutResult
	err    error
}

func (s *service) executeLines(ctx context.Context, record *models.TransactionRecord) []lineOutcome {
	lines := make([]*models.DistributionLine, len(record.Distributions))
	for i := range record.Distributions {
		lines[i] = &record.Distributions[i]
	}
	return s.executeSubset(ctx, record, lines)
}

// executeSubset fans the lines out across goroutines. One rail call failing
// or erroring never stops the siblings.
func (s *service) executeSubset(ctx context.Context, record *models.TransactionRecord, lines []*models.DistributionLine) []lineOutcome {
	outcomes := make([]lineOutcome, len(lines))
	var wg sync.WaitGroup
	wg.Add(len(lines))
	for i, line := range lines {
		go func(i int, line *models.DistributionLine) {
			defer wg.Done()
			result, err := s.rails.Execute(ctx, record.RequestedRail, payments.PayoutRequest{
				LineID:        line.ID,
				TransactionID: record.ID,
				RecipientID:   line.RecipientID,
				RecipientName: line.RecipientName,
				AmountCents:   line.AmountCents,
				Currency:      record.Currency,
				Reference:     record.PurchaseID.String(),
			})
			outcomes[i] = lineOutcome{line: line, result: result, err: err}
		}(i, line)
	}
	wg.Wait()
	return outcomes
}

// settleOutcomes persists line outcomes, the overall status and the work
// aggregates in one transaction, and emits the per-line and terminal outbox
// events alongside them. A redrive replays event identities the first attempt
// may already have written (a line failing again, the same terminal status),
// so emission goes through EmitIfNotExists; plain Emit would trip the outbox
// unique index and roll back outcomes the rails already settled.
func (s *service) settleOutcomes(ctx context.Context, record *models.TransactionRecord, outcomes []lineOutcome, redrive bool) (*models.TransactionRecord, error) {
	now := time.Now()
	var railErrs error

	for _, outcome := range outcomes {
		line := outcome.line
		executed := now
		line.ExecutedAt = &executed
		if outcome.err != nil {
			railErrs = multierr.Append(railErrs, outcome.err)
			line.Status = enums.DistributionStatusFailed
			reason := outcome.err.Error()
			line.FailureReason = &reason
			continue
		}
		if outcome.result.Settled {
			line.Status = enums.DistributionStatusCompleted
			ref := outcome.result.ExternalReference
			line.ExternalReference = &ref
			line.FailureReason = nil
		} else {
			line.Status = enums.DistributionStatusFailed
			reason := outcome.result.FailureReason
			line.FailureReason = &reason
		}
	}
	if railErrs != nil {
		s.logg.Error(ctx, "rail execution reported errors", railErrs)
	}

	status := overallStatus(record.Distributions)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, outcome := range outcomes {
			line := outcome.line
			if err := txRepo.UpdateLineOutcome(ctx, line); err != nil {
				return err
			}
			if err := txRepo.InsertPayoutEvent(ctx, payoutEventFor(record, line)); err != nil {
				return err
			}
			if err := s.events.EmitIfNotExists(ctx, tx, lineOutboxEvent(record, line)); err != nil {
				return err
			}
			s.metrics.IncPayout(record.RequestedRail.String(), line.Status.String())
		}

		if err := txRepo.SetOverallStatus(ctx, record.ID, status, &now); err != nil {
			return err
		}
		if !redrive {
			if err := s.worksRepo.WithTx(tx).RecordLicense(ctx, record.WorkID, record.TotalCents); err != nil {
				return err
			}
		}

		record.OverallStatus = status
		record.CompletedAt = &now
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     terminalEventType(status),
			AggregateType: enums.AggregateTransactionRecord,
			AggregateID:   record.ID,
			Version:       1,
			Data:          outcomePayload(record),
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func buildRecord(in PurchaseInput, validation splits.ValidationResult, calcLines []distribution.Line) *models.TransactionRecord {
	report, _ := json.Marshal(validation)
	record := &models.TransactionRecord{
		ID:               uuid.New(),
		PurchaseID:       in.PurchaseID,
		WorkID:           in.WorkID,
		BuyerID:          in.BuyerID,
		TotalCents:       in.TotalCents,
		Currency:         in.Currency,
		RequestedRail:    in.Rail,
		ValidationScore:  validation.Score,
		ValidationErrors: report,
		OverallStatus:    enums.TransactionStatusProcessing,
		OccurredAt:       occurredAt(in),
	}
	record.Distributions = make([]models.DistributionLine, len(calcLines))
	for i, line := range calcLines {
		record.Distributions[i] = models.DistributionLine{
			ID:            uuid.New(),
			TransactionID: record.ID,
			RecipientID:   line.RecipientID,
			RecipientName: line.RecipientName,
			Role:          line.Role,
			Percentage:    line.Percentage,
			AmountCents:   line.AmountCents,
			Status:        enums.DistributionStatusPending,
			Position:      line.Position,
		}
	}
	return record
}

func entryInputs(entries []models.SplitEntry) []splits.EntryInput {
	inputs := make([]splits.EntryInput, len(entries))
	for i, entry := range entries {
		inputs[i] = splits.EntryInput{
			RecipientID:   entry.RecipientID,
			RecipientName: entry.RecipientName,
			Role:          entry.Role,
			Percentage:    entry.Percentage,
		}
	}
	return inputs
}

func occurredAt(in PurchaseInput) time.Time {
	if in.OccurredAt.IsZero() {
		return time.Now()
	}
	return in.OccurredAt
}

// overallStatus maps line outcomes to a terminal record status. By the time
// lines exist the purchase passed validation and calculation, so any failure
// here is partial and redrivable; TransactionStatusFailed is reserved for
// purchases rejected before execution.
func overallStatus(lines []models.DistributionLine) enums.TransactionStatus {
	for _, line := range lines {
		if line.Status == enums.DistributionStatusFailed {
			return enums.TransactionStatusPartiallyFailed
		}
	}
	return enums.TransactionStatusCompleted
}

func terminalEventType(status enums.TransactionStatus) enums.OutboxEventType {
	switch status {
	case enums.TransactionStatusCompleted:
		return enums.EventTransactionCompleted
	case enums.TransactionStatusPartiallyFailed:
		return enums.EventTransactionPartiallyFailed
	default:
		return enums.EventTransactionFailed
	}
}

func outcomePayload(record *models.TransactionRecord) payloads.TransactionOutcomeEvent {
	failed := 0
	for _, line := range record.Distributions {
		if line.Status == enums.DistributionStatusFailed {
			failed++
		}
	}
	return payloads.TransactionOutcomeEvent{
		TransactionID: record.ID,
		PurchaseID:    record.PurchaseID.String(),
		WorkID:        record.WorkID,
		TotalCents:    record.TotalCents,
		Currency:      record.Currency,
		Status:        record.OverallStatus,
		LineCount:     len(record.Distributions),
		FailedCount:   failed,
	}
}

func payoutEventFor(record *models.TransactionRecord, line *models.DistributionLine) *models.PayoutEvent {
	eventType := enums.PayoutEventSettled
	if line.Status == enums.DistributionStatusFailed {
		eventType = enums.PayoutEventFailed
	}
	return &models.PayoutEvent{
		ID:            uuid.New(),
		TransactionID: record.ID,
		LineID:        line.ID,
		RecipientID:   line.RecipientID,
		Type:          eventType,
		AmountCents:   line.AmountCents,
		Rail:          record.RequestedRail,
	}
}

func lineOutboxEvent(record *models.TransactionRecord, line *models.DistributionLine) outbox.DomainEvent {
	if line.Status == enums.DistributionStatusCompleted {
		return outbox.DomainEvent{
			EventType:     enums.EventPayoutSettled,
			AggregateType: enums.AggregateDistributionLine,
			AggregateID:   line.ID,
			Version:       1,
			Data: payloads.PayoutSettledEvent{
				TransactionID:     record.ID,
				LineID:            line.ID,
				RecipientID:       line.RecipientID,
				RecipientName:     line.RecipientName,
				AmountCents:       line.AmountCents,
				Currency:          record.Currency,
				Rail:              record.RequestedRail,
				ExternalReference: derefString(line.ExternalReference),
			},
		}
	}
	return outbox.DomainEvent{
		EventType:     enums.EventPayoutFailed,
		AggregateType: enums.AggregateDistributionLine,
		AggregateID:   line.ID,
		Version:       1,
		Data: payloads.PayoutFailedEvent{
			TransactionID: record.ID,
			LineID:        line.ID,
			RecipientID:   line.RecipientID,
			RecipientName: line.RecipientName,
			AmountCents:   line.AmountCents,
			Currency:      record.Currency,
			Rail:          record.RequestedRail,
			FailureReason: derefString(line.FailureReason),
		},
	}
}

func (s *service) releaseDedupe(ctx context.Context, key string) {
	if err := s.dedupe.Del(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "key", key), "failed to release dedupe key")
	}
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
