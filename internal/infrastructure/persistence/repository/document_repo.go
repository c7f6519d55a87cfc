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

// DocumentRepository implements port.DocumentRepository on SQLite.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

const documentColumns = `
	id, name, type, status, uploaded_at, updated_at, file_url, file_size,
	mime_type, user_id, applicant_id, application_id, notes, deleted
`

// Create persists a new document record, assigning its id.
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.Type,
		doc.Status,
		doc.UploadedAt,
		doc.UpdatedAt,
		doc.FileURL,
		doc.FileSize,
		doc.MimeType,
		doc.UserID,
		doc.ApplicantID,
		doc.ApplicationID,
		doc.Notes,
		doc.Deleted,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by id, deleted or not.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`

	doc, err := scanDocument(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// Update saves the full document record.
func (r *DocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents SET
			name = ?, type = ?, status = ?, updated_at = ?, file_url = ?,
			file_size = ?, mime_type = ?, applicant_id = ?, application_id = ?,
			notes = ?, deleted = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		doc.Name,
		doc.Type,
		doc.Status,
		doc.UpdatedAt,
		doc.FileURL,
		doc.FileSize,
		doc.MimeType,
		doc.ApplicantID,
		doc.ApplicationID,
		doc.Notes,
		doc.Deleted,
		doc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update document", zap.String("id", doc.ID), zap.Error(err))
		return fmt.Errorf("failed to update document: %w", err)
	}

	return requireRowAffected(result)
}

// ListByApplication retrieves the live documents attached to an application.
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE application_id = ? AND deleted = 0
		ORDER BY uploaded_at DESC
	`
	return r.list(ctx, query, applicationID)
}

// ListByUser retrieves the live documents uploaded by a user.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = ? AND deleted = 0
		ORDER BY uploaded_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *DocumentRepository) list(ctx context.Context, query string, arg interface{}) ([]*entity.Document, error) {
	rows, err := exec(ctx, r.db).QueryContext(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// AppendHistory adds one event to the document's append-only trail.
func (r *DocumentRepository) AppendHistory(ctx context.Context, event *entity.DocumentHistory) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	query := `
		INSERT INTO document_history (id, document_id, action, timestamp, user_id, user_name, details)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec(ctx, r.db).ExecContext(ctx, query,
		event.ID,
		event.DocumentID,
		event.Action,
		event.Timestamp,
		event.UserID,
		event.UserName,
		event.Details,
	)
	if err != nil {
		r.logger.Error("Failed to append document history", zap.String("document_id", event.DocumentID), zap.Error(err))
		return fmt.Errorf("failed to append document history: %w", err)
	}

	return nil
}

// GetHistory retrieves a document's events oldest first.
func (r *DocumentRepository) GetHistory(ctx context.Context, documentID string) ([]*entity.DocumentHistory, error) {
	query := `
		SELECT id, document_id, action, timestamp, user_id, user_name, details
		FROM document_history
		WHERE document_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, documentID)
	if err != nil {
		r.logger.Error("Failed to get document history", zap.String("document_id", documentID), zap.Error(err))
		return nil, fmt.Errorf("failed to get document history: %w", err)
	}
	defer rows.Close()

	var events []*entity.DocumentHistory
	for rows.Next() {
		var event entity.DocumentHistory
		err := rows.Scan(
			&event.ID,
			&event.DocumentID,
			&event.Action,
			&event.Timestamp,
			&event.UserID,
			&event.UserName,
			&event.Details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document history: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var doc entity.Document
	var updatedAt sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Type,
		&doc.Status,
		&doc.UploadedAt,
		&updatedAt,
		&doc.FileURL,
		&doc.FileSize,
		&doc.MimeType,
		&doc.UserID,
		&doc.ApplicantID,
		&doc.ApplicationID,
		&doc.Notes,
		&doc.Deleted,
	)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		doc.UpdatedAt = &updatedAt.Time
	}

	return &doc, nil
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
