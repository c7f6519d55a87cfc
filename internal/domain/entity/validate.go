package entity

import (
	"fmt"
	"regexp"
)

// FieldError describes a single validation failure, addressed to the field
// that caused it so the editing form can attach it in place.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	// Dates are validated by shape only. A string like 2024-02-30 passes;
	// calendar plausibility is intentionally not checked here.
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Validate applies the structural acceptance rules to an application. It is
// pure: no storage, no network. Filled fields must be well-formed; fields a
// draft may still leave empty are only checked when present. A nil result
// means the application passed.
func Validate(app *VisaApplication) []FieldError {
	var fails []FieldError

	if !ValidVisaTypes[app.VisaType] {
		fails = append(fails, FieldError{"visa_type", "must be one of tourist, business, student, work, family"})
	}
	if app.ApplicantCount < MinApplicants {
		fails = append(fails, FieldError{"applicant_count", "at least one applicant is required"})
	}
	if app.ApplicantCount > MaxApplicants {
		fails = append(fails, FieldError{"applicant_count", fmt.Sprintf("maximum %d applicants allowed", MaxApplicants)})
	}
	if len(app.Applicants) != app.ApplicantCount {
		fails = append(fails, FieldError{"applicants", "applicants list must match applicant count"})
	}

	for i := range app.Applicants {
		fails = append(fails, validateApplicant(&app.Applicants[i], i, false)...)
	}

	if app.PlannedArrivalDate != "" && !dateRe.MatchString(app.PlannedArrivalDate) {
		fails = append(fails, FieldError{"planned_arrival_date", "must be a date in YYYY-MM-DD format"})
	}
	if app.PlannedDepartureDate != "" && !dateRe.MatchString(app.PlannedDepartureDate) {
		fails = append(fails, FieldError{"planned_departure_date", "must be a date in YYYY-MM-DD format"})
	}
	if app.AccommodationAddress != "" && len(app.AccommodationAddress) < 10 {
		fails = append(fails, FieldError{"accommodation_address", "must be a detailed address of at least 10 characters"})
	}

	return fails
}

// ValidateForSubmission applies the full rule set an application must meet
// before it can leave draft: everything Validate checks, with the travel
// fields and every applicant's identity fields now required.
func ValidateForSubmission(app *VisaApplication) []FieldError {
	fails := Validate(app)

	if app.PlannedArrivalDate == "" {
		fails = append(fails, FieldError{"planned_arrival_date", "is required"})
	}
	if app.PlannedDepartureDate == "" {
		fails = append(fails, FieldError{"planned_departure_date", "is required"})
	}
	if app.AccommodationAddress == "" {
		fails = append(fails, FieldError{"accommodation_address", "is required"})
	}

	for i := range app.Applicants {
		fails = append(fails, validateApplicant(&app.Applicants[i], i, true)...)
	}

	return fails
}

// validateApplicant checks one applicant. With required=false only filled
// fields are checked; with required=true the identity fields must be present.
func validateApplicant(a *Applicant, index int, required bool) []FieldError {
	var fails []FieldError
	field := func(name string) string {
		return fmt.Sprintf("applicants[%d].%s", index, name)
	}

	check := func(name, value string, minLen int, message string) {
		if value == "" {
			if required {
				fails = append(fails, FieldError{field(name), "is required"})
			}
			return
		}
		if len(value) < minLen {
			fails = append(fails, FieldError{field(name), message})
		}
	}

	checkDate := func(name, value string) {
		if value == "" {
			if required {
				fails = append(fails, FieldError{field(name), "is required"})
			}
			return
		}
		if !dateRe.MatchString(value) {
			fails = append(fails, FieldError{field(name), "must be a date in YYYY-MM-DD format"})
		}
	}

	check("first_name", a.FirstName, 2, "must be at least 2 characters")
	check("last_name", a.LastName, 2, "must be at least 2 characters")
	checkDate("date_of_birth", a.DateOfBirth)
	check("nationality", a.Nationality, 2, "must be at least 2 characters")
	check("passport_number", a.PassportNumber, 5, "must be at least 5 characters")
	checkDate("passport_expiry_date", a.PassportExpiryDate)
	check("phone", a.Phone, 5, "must be at least 5 characters")

	if a.Email == "" {
		if required {
			fails = append(fails, FieldError{field("email"), "is required"})
		}
	} else if !emailRe.MatchString(a.Email) {
		fails = append(fails, FieldError{field("email"), "must be a valid email address"})
	}

	return fails
}
