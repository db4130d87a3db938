package works

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to access sqlite pool: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writes
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(&models.Work{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedWork(t *testing.T, db *gorm.DB) *models.Work {
	t.Helper()
	work := &models.Work{
		ID:               uuid.New(),
		Title:            "Midnight Loop",
		ArtistName:       "Ari Vega",
		OwnerRecipientID: uuid.New(),
	}
	if err := db.Create(work).Error; err != nil {
		t.Fatalf("seed work: %v", err)
	}
	return work
}

func TestCreateAssignsWorkID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	work := &models.Work{
		Title:            "First Light",
		ArtistName:       "Ari Vega",
		OwnerRecipientID: uuid.New(),
	}
	if err := repo.Create(context.Background(), work); err != nil {
		t.Fatalf("create work: %v", err)
	}
	if work.ID == uuid.Nil {
		t.Fatal("expected repository to assign an id")
	}
	if _, err := repo.GetByID(context.Background(), work.ID); err != nil {
		t.Fatalf("get work: %v", err)
	}
}

func TestRecordLicenseIncrementsAggregates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	work := seedWork(t, db)

	ctx := context.Background()
	if err := repo.RecordLicense(ctx, work.ID, 1000); err != nil {
		t.Fatalf("record license: %v", err)
	}
	if err := repo.RecordLicense(ctx, work.ID, 250); err != nil {
		t.Fatalf("record license: %v", err)
	}

	got, err := repo.GetByID(ctx, work.ID)
	if err != nil {
		t.Fatalf("get work: %v", err)
	}
	if got.LicenseCount != 2 {
		t.Fatalf("expected license count 2, got %d", got.LicenseCount)
	}
	if got.TotalRevenueCents != 1250 {
		t.Fatalf("expected revenue 1250, got %d", got.TotalRevenueCents)
	}
}

func TestRecordLicenseConcurrentPurchases(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	work := seedWork(t, db)

	const purchases = 20
	var wg sync.WaitGroup
	wg.Add(purchases)
	for i := 0; i < purchases; i++ {
		go func() {
			defer wg.Done()
			if err := repo.RecordLicense(context.Background(), work.ID, 100); err != nil {
				t.Errorf("record license: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(context.Background(), work.ID)
	if err != nil {
		t.Fatalf("get work: %v", err)
	}
	if got.LicenseCount != purchases {
		t.Fatalf("lost updates: expected %d licenses, got %d", purchases, got.LicenseCount)
	}
	if got.TotalRevenueCents != purchases*100 {
		t.Fatalf("lost updates: expected revenue %d, got %d", purchases*100, got.TotalRevenueCents)
	}
}

func TestRecordLicenseUnknownWork(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	err := repo.RecordLicense(context.Background(), uuid.New(), 100)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
