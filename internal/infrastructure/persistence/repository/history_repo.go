package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// HistoryRepository implements port.HistoryRepository on SQLite.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new status history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create records one status transition.
func (r *HistoryRepository) Create(ctx context.Context, history *entity.StatusHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}

	query := `
		INSERT INTO status_history (
			id, application_id, actor, previous_status, new_status,
			trigger_name, detail, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		history.ID,
		history.ApplicationID,
		history.Actor,
		history.PreviousStatus,
		history.NewStatus,
		history.Trigger,
		history.Detail,
		history.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create status history", zap.String("application_id", history.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to create status history: %w", err)
	}

	return nil
}

// GetByApplicationID retrieves an application's transitions oldest first.
func (r *HistoryRepository) GetByApplicationID(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error) {
	query := `
		SELECT id, application_id, actor, previous_status, new_status,
			trigger_name, detail, timestamp
		FROM status_history
		WHERE application_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to get status history", zap.String("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.StatusHistory
	for rows.Next() {
		var entry entity.StatusHistory
		err := rows.Scan(
			&entry.ID,
			&entry.ApplicationID,
			&entry.Actor,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&entry.Trigger,
			&entry.Detail,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
