package splits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes split ledger reads, proposals and amendments.
type Service interface {
	GetByWorkID(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error)
	Propose(ctx context.Context, entries []EntryInput) ValidationResult
	ReplaceEntries(ctx context.Context, workID uuid.UUID, entries []EntryInput, actor *outbox.ActorRef) (*models.SplitLedger, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	events outboxPublisher
	logg   *logger.Logger
}

// NewService wires the split ledger service.
func NewService(repo Repository, tx txRunner, events outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("splits repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

func (s *service) GetByWorkID(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error) {
	if workID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work id is required")
	}
	ledger, err := s.repo.GetByWorkID(ctx, workID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "split ledger not found for work")
		}
		return nil, err
	}
	return ledger, nil
}

// Propose runs the validator without persisting anything. Upload flows call
// this to give authors pre-publish feedback.
func (s *service) Propose(_ context.Context, entries []EntryInput) ValidationResult {
	return Validate(entries)
}

func (s *service) ReplaceEntries(ctx context.Context, workID uuid.UUID, entries []EntryInput, actor *outbox.ActorRef) (*models.SplitLedger, error) {
	if workID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work id is required")
	}

	result := Validate(entries)
	if !result.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "split is structurally invalid").WithDetails(result)
	}

	ledger, err := s.repo.GetByWorkID(ctx, workID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if ledger != nil && ledger.Locked() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "split ledger is locked: a purchase already references it")
	}

	rows := make([]models.SplitEntry, len(entries))
	for i, e := range entries {
		rows[i] = models.SplitEntry{
			RecipientID:   e.RecipientID,
			RecipientName: e.RecipientName,
			Role:          e.Role,
			Percentage:    e.Percentage,
			Position:      i,
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if ledger == nil {
			ledger = &models.SplitLedger{WorkID: workID}
			if err := txRepo.Create(ctx, ledger); err != nil {
				return err
			}
		}

		if err := txRepo.ReplaceEntries(ctx, ledger.ID, rows); err != nil {
			return err
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSplitLedgerUpdated,
			AggregateType: enums.AggregateSplitLedger,
			AggregateID:   ledger.ID,
			Actor:         actor,
			Version:       1,
			Data: map[string]any{
				"ledger_id":   ledger.ID,
				"work_id":     workID,
				"entry_count": len(rows),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithWorkID(ctx, workID.String())
	s.logg.Info(logCtx, "split ledger entries replaced")

	ledger.Entries = rows
	return ledger, nil
}
