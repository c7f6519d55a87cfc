package entity

// Visa type constants
const (
	VisaTypeTourist  = "tourist"
	VisaTypeBusiness = "business"
	VisaTypeStudent  = "student"
	VisaTypeWork     = "work"
	VisaTypeFamily   = "family"
)

// ValidVisaTypes enumerates the accepted visa types.
var ValidVisaTypes = map[string]bool{
	VisaTypeTourist:  true,
	VisaTypeBusiness: true,
	VisaTypeStudent:  true,
	VisaTypeWork:     true,
	VisaTypeFamily:   true,
}

// Status constants for VisaApplication. These mirror the workflow states;
// the repository stores them as plain strings.
const (
	StatusDraft             = "DRAFT"
	StatusStarted           = "STARTED"
	StatusWaitingPayment    = "WAITING_PAYMENT"
	StatusPending           = "PENDING"
	StatusWaitingSignatures = "WAITING_SIGNATURES"
	StatusAgreementFailed   = "AGREEMENT_FAILED"
	StatusCompleted         = "COMPLETED"
	StatusApproved          = "APPROVED"
	StatusDenied            = "DENIED"
)

// Marital status constants for Applicant
const (
	MaritalStatusSingle   = "single"
	MaritalStatusMarried  = "married"
	MaritalStatusDivorced = "divorced"
	MaritalStatusWidowed  = "widowed"
)

// Legal document type constants for the applicant's identity document reference
const (
	LegalDocumentPassport        = "passport"
	LegalDocumentIDCard          = "id_card"
	LegalDocumentDriversLicense  = "drivers_license"
	LegalDocumentResidencePermit = "residence_permit"
)

// Legal service type constants for the agreement sub-record
const (
	LegalServiceVisaApplication = "visa_application"
	LegalServiceResidencePermit = "residence_permit"
	LegalServiceFamilyReunion   = "family_reunion"
	LegalServiceOther           = "other"
)

// Document type constants for supporting uploads
const (
	DocumentTypePassportScan            = "passport_scan"
	DocumentTypePhotoID                 = "photo_id"
	DocumentTypeProofOfAccommodation    = "proof_of_accommodation"
	DocumentTypeFinancialProof          = "financial_proof"
	DocumentTypeInvitationLetter        = "invitation_letter"
	DocumentTypeEnrollmentProof         = "enrollment_proof"
	DocumentTypeEmploymentContract      = "employment_contract"
	DocumentTypeFamilyRelationshipProof = "family_relationship_proof"
	DocumentTypeOther                   = "other"
)

// Document review status constants
const (
	DocumentStatusPending  = "pending"
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"
)

// Document history action constants
const (
	HistoryActionUpload       = "upload"
	HistoryActionUpdate       = "update"
	HistoryActionDelete       = "delete"
	HistoryActionStatusChange = "status_change"
)

// Applicant count bounds enforced by validation
const (
	MinApplicants = 1
	MaxApplicants = 10
)
