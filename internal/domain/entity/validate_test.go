package entity

import (
	"strings"
	"testing"
)

func validDraft() *VisaApplication {
	return &VisaApplication{
		UserID:         "user-1",
		Status:         StatusDraft,
		VisaType:       VisaTypeTourist,
		ApplicantCount: 1,
		Applicants: []Applicant{
			{
				FirstName:          "Maria",
				LastName:           "Silva",
				DateOfBirth:        "1990-04-12",
				Nationality:        "Brazilian",
				PassportNumber:     "BR123456",
				PassportExpiryDate: "2030-01-01",
				Email:              "maria@example.com",
				Phone:              "+351911111111",
			},
		},
		PlannedArrivalDate:   "2026-10-01",
		PlannedDepartureDate: "2026-10-15",
		AccommodationAddress: "Rua Augusta 100, Lisbon",
	}
}

func hasFieldError(fails []FieldError, field string) bool {
	for _, f := range fails {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_AcceptsCompleteApplication(t *testing.T) {
	if fails := Validate(validDraft()); len(fails) != 0 {
		t.Fatalf("expected no failures, got %v", fails)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(app *VisaApplication)
		wantField string
	}{
		{
			name:      "unknown visa type",
			mutate:    func(app *VisaApplication) { app.VisaType = "diplomatic" },
			wantField: "visa_type",
		},
		{
			name:      "zero applicants",
			mutate:    func(app *VisaApplication) { app.ApplicantCount = 0; app.Applicants = nil },
			wantField: "applicant_count",
		},
		{
			name: "too many applicants",
			mutate: func(app *VisaApplication) {
				app.ResizeApplicants(MaxApplicants)
				app.ApplicantCount = MaxApplicants + 1
			},
			wantField: "applicant_count",
		},
		{
			name:      "count and list out of step",
			mutate:    func(app *VisaApplication) { app.ApplicantCount = 3 },
			wantField: "applicants",
		},
		{
			name:      "short first name",
			mutate:    func(app *VisaApplication) { app.Applicants[0].FirstName = "M" },
			wantField: "applicants[0].first_name",
		},
		{
			name:      "short passport number",
			mutate:    func(app *VisaApplication) { app.Applicants[0].PassportNumber = "1234" },
			wantField: "applicants[0].passport_number",
		},
		{
			name:      "malformed email",
			mutate:    func(app *VisaApplication) { app.Applicants[0].Email = "not-an-email" },
			wantField: "applicants[0].email",
		},
		{
			name:      "malformed date of birth",
			mutate:    func(app *VisaApplication) { app.Applicants[0].DateOfBirth = "12/04/1990" },
			wantField: "applicants[0].date_of_birth",
		},
		{
			name:      "malformed arrival date",
			mutate:    func(app *VisaApplication) { app.PlannedArrivalDate = "2026-1-1" },
			wantField: "planned_arrival_date",
		},
		{
			name:      "short accommodation address",
			mutate:    func(app *VisaApplication) { app.AccommodationAddress = "Lisbon" },
			wantField: "accommodation_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validDraft()
			tt.mutate(app)
			fails := Validate(app)
			if !hasFieldError(fails, tt.wantField) {
				t.Errorf("expected failure on %s, got %v", tt.wantField, fails)
			}
		})
	}
}

func TestValidate_DateShapeOnly(t *testing.T) {
	// Shape is all that is checked; an impossible calendar date passes.
	app := validDraft()
	app.PlannedArrivalDate = "2026-02-30"
	if fails := Validate(app); len(fails) != 0 {
		t.Fatalf("expected shape-valid date to pass, got %v", fails)
	}
}

func TestValidate_EmptyOptionalFieldsPassAsDraft(t *testing.T) {
	app := validDraft()
	app.PlannedArrivalDate = ""
	app.AccommodationAddress = ""
	app.Applicants[0].Email = ""
	if fails := Validate(app); len(fails) != 0 {
		t.Fatalf("draft with empty optional fields should pass, got %v", fails)
	}
}

func TestValidateForSubmission_RequiresEverything(t *testing.T) {
	app := validDraft()
	app.PlannedArrivalDate = ""
	app.Applicants[0].Email = ""

	fails := ValidateForSubmission(app)
	if !hasFieldError(fails, "planned_arrival_date") {
		t.Errorf("expected planned_arrival_date to be required, got %v", fails)
	}
	if !hasFieldError(fails, "applicants[0].email") {
		t.Errorf("expected email to be required, got %v", fails)
	}
}

func TestValidateForSubmission_AcceptsCompleteApplication(t *testing.T) {
	if fails := ValidateForSubmission(validDraft()); len(fails) != 0 {
		t.Fatalf("expected no failures, got %v", fails)
	}
}

func TestResizeApplicants(t *testing.T) {
	app := validDraft()
	app.ResizeApplicants(3)
	if len(app.Applicants) != 3 || app.ApplicantCount != 3 {
		t.Fatalf("expected 3 applicants, got %d (count %d)", len(app.Applicants), app.ApplicantCount)
	}
	if app.Applicants[0].FirstName != "Maria" {
		t.Error("existing applicant data should survive a resize")
	}
	if app.Applicants[2].FirstName != "" {
		t.Error("new slots should be empty placeholders")
	}

	app.ResizeApplicants(1)
	if len(app.Applicants) != 1 || app.ApplicantCount != 1 {
		t.Fatalf("expected 1 applicant after shrink, got %d", len(app.Applicants))
	}

	app.ResizeApplicants(-2)
	if len(app.Applicants) != 0 {
		t.Fatal("negative count should clamp to zero")
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Maria", "Silva", "Maria Silva"},
		{"Maria", "", "Maria"},
		{"", "Silva", "Silva"},
		{"", "", ""},
	}
	for _, tt := range tests {
		a := Applicant{FirstName: tt.first, LastName: tt.last}
		if got := a.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "visa_type", Message: "unknown"}
	if !strings.Contains(err.Error(), "visa_type") {
		t.Errorf("error string should carry the field name, got %q", err.Error())
	}
}
