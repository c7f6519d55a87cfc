package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
	"github.com/hcaumo/VisaProject/internal/infrastructure/persistence/sqlite"
)

// ApplicationRepository implements port.ApplicationRepository on SQLite.
// Applicants and the legal agreement are stored as JSON columns; they are
// read and written as whole sub-documents, never queried into.
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, user_id, status, visa_type, applicant_count, applicants,
	planned_arrival_date, planned_departure_date, accommodation_address,
	proof_of_accommodation_id, financial_proof_id, invitation_letter_id,
	enrollment_proof_id, employment_contract_id, family_relationship_proof_id,
	legal_agreement, last_failure, created_at, updated_at
`

// Create persists a new application, assigning its id and timestamps.
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.VisaApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	applicants, agreement, err := marshalSubDocuments(app)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO visa_applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = exec(ctx, r.db).ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.Status,
		app.VisaType,
		app.ApplicantCount,
		applicants,
		app.PlannedArrivalDate,
		app.PlannedDepartureDate,
		app.AccommodationAddress,
		app.ProofOfAccommodationID,
		app.FinancialProofID,
		app.InvitationLetterID,
		app.EnrollmentProofID,
		app.EmploymentContractID,
		app.FamilyRelationshipProofID,
		agreement,
		app.LastFailure,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by id.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.VisaApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM visa_applications WHERE id = ?`

	app, err := scanApplication(exec(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// Update saves the full record and refreshes updated_at.
func (r *ApplicationRepository) Update(ctx context.Context, app *entity.VisaApplication) error {
	app.UpdatedAt = time.Now()

	applicants, agreement, err := marshalSubDocuments(app)
	if err != nil {
		return err
	}

	query := `
		UPDATE visa_applications SET
			status = ?, visa_type = ?, applicant_count = ?, applicants = ?,
			planned_arrival_date = ?, planned_departure_date = ?, accommodation_address = ?,
			proof_of_accommodation_id = ?, financial_proof_id = ?, invitation_letter_id = ?,
			enrollment_proof_id = ?, employment_contract_id = ?, family_relationship_proof_id = ?,
			legal_agreement = ?, last_failure = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := exec(ctx, r.db).ExecContext(ctx, query,
		app.Status,
		app.VisaType,
		app.ApplicantCount,
		applicants,
		app.PlannedArrivalDate,
		app.PlannedDepartureDate,
		app.AccommodationAddress,
		app.ProofOfAccommodationID,
		app.FinancialProofID,
		app.InvitationLetterID,
		app.EnrollmentProofID,
		app.EmploymentContractID,
		app.FamilyRelationshipProofID,
		agreement,
		app.LastFailure,
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update application", zap.String("id", app.ID), zap.Error(err))
		return fmt.Errorf("failed to update application: %w", err)
	}

	return requireRowAffected(result)
}

// UpdateStatus changes only the status column.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE visa_applications SET status = ?, updated_at = ? WHERE id = ?`

	result, err := exec(ctx, r.db).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return requireRowAffected(result)
}

// List retrieves applications newest first. An empty userID returns all
// applications; a non-positive limit returns everything.
func (r *ApplicationRepository) List(ctx context.Context, userID string, limit, offset int) ([]*entity.VisaApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM visa_applications`
	args := []interface{}{}

	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := exec(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.VisaApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*entity.VisaApplication, error) {
	var app entity.VisaApplication
	var applicants, agreement string

	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Status,
		&app.VisaType,
		&app.ApplicantCount,
		&applicants,
		&app.PlannedArrivalDate,
		&app.PlannedDepartureDate,
		&app.AccommodationAddress,
		&app.ProofOfAccommodationID,
		&app.FinancialProofID,
		&app.InvitationLetterID,
		&app.EnrollmentProofID,
		&app.EmploymentContractID,
		&app.FamilyRelationshipProofID,
		&agreement,
		&app.LastFailure,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(applicants), &app.Applicants); err != nil {
		return nil, fmt.Errorf("failed to decode applicants: %w", err)
	}
	if err := json.Unmarshal([]byte(agreement), &app.LegalAgreement); err != nil {
		return nil, fmt.Errorf("failed to decode legal agreement: %w", err)
	}

	return &app, nil
}

func marshalSubDocuments(app *entity.VisaApplication) (applicants, agreement string, err error) {
	a, err := json.Marshal(app.Applicants)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode applicants: %w", err)
	}
	g, err := json.Marshal(app.LegalAgreement)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode legal agreement: %w", err)
	}
	return string(a), string(g), nil
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// exec returns the context transaction when one is open, otherwise the
// bare connection. All repository statements go through it so a
// WithTransaction scope covers every repository uniformly.
func exec(ctx context.Context, db *sql.DB) executor {
	if tx, ok := sqlite.ExtractTx(ctx); ok {
		return tx
	}
	return db
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
