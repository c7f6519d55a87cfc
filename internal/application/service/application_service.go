package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// ApplicationService owns draft editing: creating applications, keeping the
// applicant list in step with the applicant count, and guarding the fields
// the workflow owns. Lifecycle transitions live in the workflow engine.
type ApplicationService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*entity.VisaApplication, error)
	Get(ctx context.Context, id string) (*entity.VisaApplication, error)
	Create(ctx context.Context, app *entity.VisaApplication) (*entity.VisaApplication, error)
	Update(ctx context.Context, id string, incoming *entity.VisaApplication) (*entity.VisaApplication, error)
	History(ctx context.Context, id string) ([]*entity.StatusHistory, error)
}

type applicationService struct {
	apps    port.ApplicationRepository
	history port.HistoryRepository
	logger  *zap.Logger
}

// NewApplicationService creates the application CRUD service.
func NewApplicationService(apps port.ApplicationRepository, history port.HistoryRepository, logger *zap.Logger) ApplicationService {
	return &applicationService{apps: apps, history: history, logger: logger}
}

func (s *applicationService) List(ctx context.Context, userID string, limit, offset int) ([]*entity.VisaApplication, error) {
	return s.apps.List(ctx, userID, limit, offset)
}

func (s *applicationService) Get(ctx context.Context, id string) (*entity.VisaApplication, error) {
	return s.apps.GetByID(ctx, id)
}

// Create validates and persists a new draft. Missing basics default the way
// the form does: tourist visa, one applicant.
func (s *applicationService) Create(ctx context.Context, app *entity.VisaApplication) (*entity.VisaApplication, error) {
	if app.VisaType == "" {
		app.VisaType = entity.VisaTypeTourist
	}
	if app.ApplicantCount == 0 {
		app.ApplicantCount = 1
	}
	app.ResizeApplicants(app.ApplicantCount)
	app.Status = entity.StatusDraft

	if fails := entity.Validate(app); len(fails) > 0 {
		return nil, &ValidationError{Fails: fails}
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("Application created",
		zap.String("application_id", app.ID),
		zap.String("visa_type", app.VisaType),
		zap.Int("applicant_count", app.ApplicantCount))

	return app, nil
}

// Update merges form data onto an editable application. Server-owned fields
// (id, status, ownership, timestamps) and the agreement document id/url are
// preserved: once set they are never cleared through the editing path.
func (s *applicationService) Update(ctx context.Context, id string, incoming *entity.VisaApplication) (*entity.VisaApplication, error) {
	current, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsEditable() {
		return nil, ErrNotEditable
	}

	merged := *incoming
	merged.ID = current.ID
	merged.UserID = current.UserID
	merged.Status = current.Status
	merged.CreatedAt = current.CreatedAt
	merged.LastFailure = current.LastFailure
	if merged.LegalAgreement.DocumentID == "" {
		merged.LegalAgreement.DocumentID = current.LegalAgreement.DocumentID
	}
	if merged.LegalAgreement.SignedURL == "" {
		merged.LegalAgreement.SignedURL = current.LegalAgreement.SignedURL
	}

	if merged.ApplicantCount == 0 {
		merged.ApplicantCount = current.ApplicantCount
	}
	merged.ResizeApplicants(merged.ApplicantCount)

	if fails := entity.Validate(&merged); len(fails) > 0 {
		return nil, &ValidationError{Fails: fails}
	}

	if err := s.apps.Update(ctx, &merged); err != nil {
		return nil, err
	}

	return &merged, nil
}

func (s *applicationService) History(ctx context.Context, id string) ([]*entity.StatusHistory, error) {
	if _, err := s.apps.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.history.GetByApplicationID(ctx, id)
}
