package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
	"github.com/hcaumo/VisaProject/internal/domain/entity"
)

// unknownField is the placeholder rendered for applicant details that were
// never collected. The agreement must render with whatever data exists.
const unknownField = "Unknown"

// AgreementDefaults carries the configurable parts of the agreement:
// who the consultant is and where the signature formally takes place.
type AgreementDefaults struct {
	ConsultantName    string
	SignatureLocation string
}

// AgreementFields is the flattened view of an application that the
// agreement template consumes. Every field is already defaulted.
type AgreementFields struct {
	ClientName               string
	ClientMaritalStatus      string
	ClientNationality        string
	ClientDocumentType       string
	ClientDocumentNumber     string
	ClientDocumentIssuer     string
	ClientDocumentExpiryDate string
	ClientAddress            string
	ClientTaxID              string
	ClientPhone              string
	ClientEmail              string
	ConsultantName           string
	ServiceDescription       string
	ServiceValue             string
	SignatureLocation        string
	SignatureDate            string
}

// AgreementService renders the legal-services agreement for an application
// and manages its lifecycle with the signature provider.
type AgreementService interface {
	// FieldsFor flattens the application into template fields, applying
	// placeholder defaults for anything missing.
	FieldsFor(app *entity.VisaApplication) AgreementFields

	// Render produces the agreement HTML for an application.
	Render(app *entity.VisaApplication) (string, error)

	// Dispatch renders the agreement and sends it for signature by the
	// primary applicant. It returns the provider's document id.
	Dispatch(ctx context.Context, app *entity.VisaApplication) (string, error)

	// Status returns the provider-side status of a dispatched agreement.
	Status(ctx context.Context, documentID string) (string, error)

	// SignedURL returns the download URL of the signed agreement, or an
	// empty string while signatures are still pending.
	SignedURL(ctx context.Context, documentID string) (string, error)
}

type agreementService struct {
	signatures port.SignatureClient
	defaults   AgreementDefaults
	timeout    time.Duration
	tmpl       *template.Template
	logger     *zap.Logger
}

// NewAgreementService creates the agreement service. Empty defaults fall
// back to the consultant's standing details; a zero timeout becomes 30s.
func NewAgreementService(signatures port.SignatureClient, defaults AgreementDefaults, timeout time.Duration, logger *zap.Logger) AgreementService {
	if defaults.ConsultantName == "" {
		defaults.ConsultantName = "Advogados ZR"
	}
	if defaults.SignatureLocation == "" {
		defaults.SignatureLocation = "Lisbon"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tmpl := template.Must(template.New("agreement").Parse(agreementTemplate))
	return &agreementService{
		signatures: signatures,
		defaults:   defaults,
		timeout:    timeout,
		tmpl:       tmpl,
		logger:     logger,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}

func (s *agreementService) FieldsFor(app *entity.VisaApplication) AgreementFields {
	var signer entity.Applicant
	if p := app.PrimaryApplicant(); p != nil {
		signer = *p
	}

	agreement := app.LegalAgreement

	description := agreement.ServiceDescription
	if description == "" {
		description = fmt.Sprintf("Assistance with a %s visa application for Portugal.", app.VisaType)
	}

	value := "0.00"
	if agreement.ServiceValue != "" {
		if d, err := decimal.NewFromString(agreement.ServiceValue); err == nil {
			value = d.StringFixed(2)
		}
	}

	consultant := agreement.ConsultantName
	if consultant == "" {
		consultant = s.defaults.ConsultantName
	}
	location := agreement.SignatureLocation
	if location == "" {
		location = s.defaults.SignatureLocation
	}
	date := agreement.SignatureDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	return AgreementFields{
		ClientName:               orUnknown(signer.FullName()),
		ClientMaritalStatus:      orUnknown(signer.MaritalStatus),
		ClientNationality:        orUnknown(signer.Nationality),
		ClientDocumentType:       orUnknown(signer.DocumentType),
		ClientDocumentNumber:     orUnknown(signer.DocumentNumber),
		ClientDocumentIssuer:     orUnknown(signer.DocumentIssuer),
		ClientDocumentExpiryDate: orUnknown(signer.DocumentExpiryDate),
		ClientAddress:            orUnknown(signer.Address),
		ClientTaxID:              orUnknown(signer.TaxID),
		ClientPhone:              orUnknown(signer.Phone),
		ClientEmail:              orUnknown(signer.Email),
		ConsultantName:           consultant,
		ServiceDescription:       description,
		ServiceValue:             value,
		SignatureLocation:        location,
		SignatureDate:            date,
	}
}

func (s *agreementService) Render(app *entity.VisaApplication) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, s.FieldsFor(app)); err != nil {
		return "", fmt.Errorf("render agreement for application %s: %w", app.ID, err)
	}
	return buf.String(), nil
}

func (s *agreementService) Dispatch(ctx context.Context, app *entity.VisaApplication) (string, error) {
	signer := app.PrimaryApplicant()
	if signer == nil || signer.Email == "" {
		return "", fmt.Errorf("%w: application %s has no signer email", port.ErrProviderFailure, app.ID)
	}

	html, err := s.Render(app)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docID, err := s.signatures.CreateDocument(ctx, port.SignatureRequest{
		DocumentName: fmt.Sprintf("Legal Services Agreement - %s", signer.FullName()),
		HTMLContent:  html,
		SignerName:   signer.FullName(),
		SignerEmail:  signer.Email,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: dispatch agreement for application %s: %v", port.ErrProviderTimeout, app.ID, err)
		}
		s.logger.Error("Agreement dispatch failed",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return "", err
	}

	s.logger.Info("Agreement dispatched for signature",
		zap.String("application_id", app.ID),
		zap.String("document_id", docID),
		zap.String("signer_email", signer.Email))

	return docID, nil
}

func (s *agreementService) Status(ctx context.Context, documentID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.signatures.GetDocumentStatus(ctx, documentID)
}

func (s *agreementService) SignedURL(ctx context.Context, documentID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.signatures.GetSignedURL(ctx, documentID)
}
