package entity

import "time"

// Applicant is one person covered by a visa application.
type Applicant struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	DateOfBirth        string `json:"date_of_birth"`
	Nationality        string `json:"nationality"`
	PassportNumber     string `json:"passport_number"`
	PassportExpiryDate string `json:"passport_expiry_date"`
	MaritalStatus      string `json:"marital_status,omitempty"`

	// Identity document presented for the legal agreement (may differ
	// from the passport, e.g. a national ID card).
	DocumentType       string `json:"document_type,omitempty"`
	DocumentNumber     string `json:"document_number,omitempty"`
	DocumentIssuer     string `json:"document_issuer,omitempty"`
	DocumentExpiryDate string `json:"document_expiry_date,omitempty"`

	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`

	// References into the document registry.
	PassportScanID string `json:"passport_scan_id,omitempty"`
	PhotoIDScanID  string `json:"photo_id_scan_id,omitempty"`
}

// FullName joins first and last name for display and signing.
func (a *Applicant) FullName() string {
	switch {
	case a.FirstName == "" && a.LastName == "":
		return ""
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// EmptyApplicant returns a placeholder applicant, used when the applicant
// count grows before the person's details are filled in.
func EmptyApplicant() Applicant {
	return Applicant{}
}

// LegalAgreement is the agreement sub-record attached to an application.
// DocumentID and SignedURL, once set, are never cleared by workflow code.
type LegalAgreement struct {
	Consent            bool   `json:"consent"`
	SignatureDate      string `json:"signature_date,omitempty"`
	SignatureLocation  string `json:"signature_location,omitempty"`
	ServiceType        string `json:"service_type,omitempty"`
	ServiceDescription string `json:"service_description,omitempty"`
	ServiceValue       string `json:"service_value,omitempty"` // decimal string, euros
	ConsultantName     string `json:"consultant_name,omitempty"`
	DocumentID         string `json:"document_id,omitempty"`
	SignedURL          string `json:"signed_url,omitempty"`
}

// VisaApplication is the aggregate root of the application lifecycle.
type VisaApplication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VisaType       string      `json:"visa_type"`
	ApplicantCount int         `json:"applicant_count"`
	Applicants     []Applicant `json:"applicants"`

	PlannedArrivalDate   string `json:"planned_arrival_date"`
	PlannedDepartureDate string `json:"planned_departure_date"`
	AccommodationAddress string `json:"accommodation_address"`

	// References into the document registry for supporting uploads.
	ProofOfAccommodationID    string `json:"proof_of_accommodation_id,omitempty"`
	FinancialProofID          string `json:"financial_proof_id,omitempty"`
	InvitationLetterID        string `json:"invitation_letter_id,omitempty"`
	EnrollmentProofID         string `json:"enrollment_proof_id,omitempty"`
	EmploymentContractID      string `json:"employment_contract_id,omitempty"`
	FamilyRelationshipProofID string `json:"family_relationship_proof_id,omitempty"`

	LegalAgreement LegalAgreement `json:"legal_agreement"`

	// Set when a post-payment transition fails; cleared on successful retry.
	LastFailure string `json:"last_failure,omitempty"`
}

// PrimaryApplicant returns the first applicant, who signs the legal
// agreement, or nil if none has been added yet.
func (v *VisaApplication) PrimaryApplicant() *Applicant {
	if len(v.Applicants) == 0 {
		return nil
	}
	return &v.Applicants[0]
}

// IsEditable reports whether the application can still be modified through
// the editing form. Once submitted there is no path back to draft.
func (v *VisaApplication) IsEditable() bool {
	return v.Status == StatusDraft || v.Status == StatusStarted
}

// IsTerminal reports whether the application has reached a final decision.
func (v *VisaApplication) IsTerminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusApproved || v.Status == StatusDenied
}

// ResizeApplicants grows or shrinks the applicants slice to match count,
// appending empty placeholders or truncating from the tail. It keeps the
// applicants-length-equals-count invariant and is a no-op for equal sizes.
func (v *VisaApplication) ResizeApplicants(count int) {
	if count < 0 {
		count = 0
	}
	for len(v.Applicants) < count {
		v.Applicants = append(v.Applicants, EmptyApplicant())
	}
	if len(v.Applicants) > count {
		v.Applicants = v.Applicants[:count]
	}
	v.ApplicantCount = count
}

// StatusHistory is the audit trail of one lifecycle transition.
type StatusHistory struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"application_id"`
	Actor          string    `json:"actor"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Trigger        string    `json:"trigger"`
	Detail         string    `json:"detail,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
