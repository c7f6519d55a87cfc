package port

import (
	"context"

	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// ApplicationRepository defines persistence operations for VisaApplication.
// Implementations must behave as immediately consistent: a write is visible
// to every subsequent read, with no partial-write visibility. Callers never
// see backing-store ordering guarantees beyond what List documents.
type ApplicationRepository interface {
	// Create persists a new application, assigning its identifier and
	// defaulting status, timestamps, and placeholder applicants.
	Create(ctx context.Context, app *entity.VisaApplication) error

	// GetByID returns entity.ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*entity.VisaApplication, error)

	// Update saves the full record and refreshes UpdatedAt. It performs no
	// business validation; that is the caller's responsibility.
	Update(ctx context.Context, app *entity.VisaApplication) error

	// UpdateStatus changes only the status column, refreshing UpdatedAt.
	UpdateStatus(ctx context.Context, id, status string) error

	// List returns applications for a user ordered by creation time,
	// newest first. An empty userID returns all applications.
	List(ctx context.Context, userID string, limit, offset int) ([]*entity.VisaApplication, error)
}

// DocumentRepository defines persistence operations for uploaded documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	ListByApplication(ctx context.Context, applicationID string) ([]*entity.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Document, error)

	// AppendHistory adds one event to the document's append-only trail.
	AppendHistory(ctx context.Context, event *entity.DocumentHistory) error
	GetHistory(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error)
}

// HistoryRepository records application status transitions.
type HistoryRepository interface {
	Create(ctx context.Context, history *entity.StatusHistory) error
	GetByApplicationID(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error)
}

// TransactionManager executes a function within a storage transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
