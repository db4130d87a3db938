package works

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	pkgerrors "github.com/tracksplit/tracksplit-backend/pkg/errors"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
)

type fakeRepository struct {
	getFn func(ctx context.Context, id uuid.UUID) (*models.Work, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(ctx context.Context, work *models.Work) error { return nil }

func (f *fakeRepository) RecordLicense(ctx context.Context, id uuid.UUID, revenueCents int64) error {
	return nil
}

func TestGetByIDMapsNotFound(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(&fakeRepository{}, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.Nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code for nil id, got %v", err)
	}
}
