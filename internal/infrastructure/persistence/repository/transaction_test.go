package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/domain/entity"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/sqlite"
	"github.com/hcaumo/VisaProject/pkg/database"
)

// newTestDB opens a throwaway SQLite database with the real schema applied.
func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	logger := zap.NewNop()

	dbConn, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	migrator := database.NewMigrator(dbConn, logger)
	require.NoError(t, migrator.RunMigrations(filepath.Join("..", "..", "..", "..", "migrations")))

	return sqlite.NewDB(dbConn.DB, logger)
}

func testApplication() *entity.VisaApplication {
	return &entity.VisaApplication{
		UserID:         "user-1",
		Status:         entity.StatusDraft,
		VisaType:       entity.VisaTypeTourist,
		ApplicantCount: 1,
		Applicants: []entity.Applicant{
			{
				FirstName:      "Maria",
				LastName:       "Silva",
				Email:          "maria@example.com",
				PassportNumber: "BR123456",
			},
		},
		PlannedArrivalDate:   "2026-10-01",
		PlannedDepartureDate: "2026-10-15",
		AccommodationAddress: "Rua Augusta 100, Lisbon",
	}
}

func TestWithTransaction_RollbackDiscardsWrites(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	apps := NewApplicationRepository(db.DB, logger)
	history := NewHistoryRepository(db.DB, logger)
	ctx := context.Background()

	app := testApplication()
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if err := apps.Create(ctx, app); err != nil {
			return err
		}
		if err := history.Create(ctx, &entity.StatusHistory{
			ApplicationID:  app.ID,
			Actor:          "user-1",
			PreviousStatus: entity.StatusDraft,
			NewStatus:      entity.StatusWaitingPayment,
			Trigger:        "SUBMIT",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The rollback undid both writes.
	_, err = apps.GetByID(ctx, app.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	entries, err := history.GetByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithTransaction_CommitSpansRepositories(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	apps := NewApplicationRepository(db.DB, logger)
	history := NewHistoryRepository(db.DB, logger)
	ctx := context.Background()

	app := testApplication()

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if err := apps.Create(ctx, app); err != nil {
			return err
		}
		return history.Create(ctx, &entity.StatusHistory{
			ApplicationID:  app.ID,
			Actor:          "user-1",
			PreviousStatus: entity.StatusDraft,
			NewStatus:      entity.StatusWaitingPayment,
			Trigger:        "SUBMIT",
		})
	})
	require.NoError(t, err)

	got, err := apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, got.Status)
	assert.Len(t, got.Applicants, 1)

	entries, err := history.GetByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SUBMIT", entries[0].Trigger)
}

func TestWithTransaction_NestedScopeReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	apps := NewApplicationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	app := testApplication()
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		return db.WithTransaction(ctx, func(ctx context.Context) error {
			if err := apps.Create(ctx, app); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	// The inner scope joined the outer transaction, so its write rolled
	// back with it.
	_, err = apps.GetByID(ctx, app.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
