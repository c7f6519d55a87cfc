package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// stuckAfter is how long an application may sit in PENDING before the
// operator report flags it as stuck.
const stuckAfter = 15 * time.Minute

// ReportService builds operator-facing exports of the application pipeline.
type ReportService interface {
	// ApplicationsWorkbook exports every application to an xlsx workbook:
	// one sheet with the full pipeline, one with applications needing
	// operator attention.
	ApplicationsWorkbook(ctx context.Context) ([]byte, error)
}

type reportService struct {
	apps     port.ApplicationRepository
	payments PaymentService
	logger   *zap.Logger
}

// NewReportService creates the reporting service.
func NewReportService(apps port.ApplicationRepository, payments PaymentService, logger *zap.Logger) ReportService {
	return &reportService{apps: apps, payments: payments, logger: logger}
}

func (s *reportService) ApplicationsWorkbook(ctx context.Context) ([]byte, error) {
	apps, err := s.apps.List(ctx, "", 0, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const mainSheet = "Applications"
	const stuckSheet = "Needs Attention"

	f.SetSheetName(f.GetSheetName(0), mainSheet)
	if _, err := f.NewSheet(stuckSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	header := []interface{}{"ID", "Status", "Visa Type", "Applicants", "Fee (USD)", "Created", "Updated", "Agreement Document"}
	s.setRow(f, mainSheet, 1, header)

	for i, app := range apps {
		s.setRow(f, mainSheet, i+2, []interface{}{
			app.ID,
			app.Status,
			app.VisaType,
			app.ApplicantCount,
			s.payments.FeeFor(app.VisaType),
			app.CreatedAt.Format("2006-01-02 15:04"),
			app.UpdatedAt.Format("2006-01-02 15:04"),
			app.LegalAgreement.DocumentID,
		})
	}

	stuckHeader := []interface{}{"ID", "Status", "Visa Type", "Stuck Since", "Last Failure"}
	s.setRow(f, stuckSheet, 1, stuckHeader)

	row := 2
	now := time.Now()
	for _, app := range apps {
		if !isStuck(app, now) {
			continue
		}
		s.setRow(f, stuckSheet, row, []interface{}{
			app.ID,
			app.Status,
			app.VisaType,
			app.UpdatedAt.Format("2006-01-02 15:04"),
			app.LastFailure,
		})
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Applications workbook generated",
		zap.Int("applications", len(apps)),
		zap.Int("stuck", row-2))

	return buf.Bytes(), nil
}

// isStuck flags applications the pipeline will not move on its own: a
// recorded agreement failure, or a PENDING that outlived its transient
// window.
func isStuck(app *entity.VisaApplication, now time.Time) bool {
	if app.Status == entity.StatusAgreementFailed {
		return true
	}
	return app.Status == entity.StatusPending && now.Sub(app.UpdatedAt) > stuckAfter
}

func (s *reportService) setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		s.logger.Warn("Bad cell coordinates",
			zap.String("sheet", sheet),
			zap.Int("row", row),
			zap.Error(err))
		return
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		s.logger.Warn("Failed to set sheet row",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
