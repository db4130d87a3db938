package splits

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
)

type fakeRepository struct {
	getFn     func(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error)
	createFn  func(ctx context.Context, ledger *models.SplitLedger) error
	replaceFn func(ctx context.Context, ledgerID uuid.UUID, entries []models.SplitEntry) error
	lockFn    func(ctx context.Context, ledgerID uuid.UUID, lockedAt time.Time) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) GetByWorkID(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error) {
	if f.getFn != nil {
		return f.getFn(ctx, workID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(ctx context.Context, ledger *models.SplitLedger) error {
	if f.createFn != nil {
		return f.createFn(ctx, ledger)
	}
	ledger.ID = uuid.New()
	return nil
}

func (f *fakeRepository) ReplaceEntries(ctx context.Context, ledgerID uuid.UUID, entries []models.SplitEntry) error {
	if f.replaceFn != nil {
		return f.replaceFn(ctx, ledgerID, entries)
	}
	return nil
}

func (f *fakeRepository) Lock(ctx context.Context, ledgerID uuid.UUID, lockedAt time.Time) error {
	if f.lockFn != nil {
		return f.lockFn(ctx, ledgerID, lockedAt)
	}
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubPublisher) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, pub *stubPublisher) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(repo, fakeTxRunner{}, pub, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func validEntries() []EntryInput {
	return []EntryInput{
		{RecipientName: "Ari Vega", Role: enums.RecipientRoleArtist, Percentage: decimal.NewFromInt(70)},
		{RecipientName: "Sam Producer", Role: enums.RecipientRoleProducer, Percentage: decimal.NewFromInt(30)},
	}
}

func TestReplaceEntriesCreatesLedgerAndEmitsEvent(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestService(t, &fakeRepository{}, pub)

	workID := uuid.New()
	ledger, err := svc.ReplaceEntries(context.Background(), workID, validEntries(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.WorkID != workID {
		t.Fatalf("ledger bound to wrong work: %s", ledger.WorkID)
	}
	if len(ledger.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ledger.Entries))
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(pub.events))
	}
	if pub.events[0].EventType != enums.EventSplitLedgerUpdated {
		t.Fatalf("unexpected event type %s", pub.events[0].EventType)
	}
}

func TestReplaceEntriesRejectsInvalidSplit(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestService(t, &fakeRepository{}, pub)

	bad := []EntryInput{
		{RecipientName: "A", Role: enums.RecipientRoleArtist, Percentage: decimal.NewFromInt(60)},
		{RecipientName: "B", Role: enums.RecipientRoleProducer, Percentage: decimal.NewFromInt(60)},
	}
	_, err := svc.ReplaceEntries(context.Background(), uuid.New(), bad, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("invalid split must not emit events")
	}
}

func TestReplaceEntriesRejectsLockedLedger(t *testing.T) {
	now := time.Now()
	repo := &fakeRepository{
		getFn: func(ctx context.Context, workID uuid.UUID) (*models.SplitLedger, error) {
			return &models.SplitLedger{ID: uuid.New(), WorkID: workID, LockedAt: &now}, nil
		},
	}
	svc := newTestService(t, repo, &stubPublisher{})

	_, err := svc.ReplaceEntries(context.Background(), uuid.New(), validEntries(), nil)
	if err == nil {
		t.Fatal("expected state conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %v", err)
	}
}

func TestGetByWorkIDNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &stubPublisher{})

	_, err := svc.GetByWorkID(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestProposeDoesNotPersist(t *testing.T) {
	created := false
	repo := &fakeRepository{
		createFn: func(ctx context.Context, ledger *models.SplitLedger) error {
			created = true
			return nil
		},
	}
	svc := newTestService(t, repo, &stubPublisher{})

	result := svc.Propose(context.Background(), validEntries())
	if !result.Valid {
		t.Fatalf("expected valid proposal, errors: %v", result.Errors)
	}
	if created {
		t.Fatal("propose must not write to the repository")
	}
}
