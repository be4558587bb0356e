package httptransport

import "sahay/internal/profile"

// authRequest is the single-envelope body for POST /auth; Action selects
// the operation and decides which of the remaining fields matter.
type authRequest struct {
	Action string `json:"action"`

	// register
	Email           string `json:"email,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	Gender          string `json:"gender,omitempty"`
	WhatsappUpdates bool   `json:"whatsapp_updates,omitempty"`

	// login; identifier is an email or a mobile number
	Identifier string `json:"identifier,omitempty"`
	RememberMe bool   `json:"rememberMe,omitempty"`

	// register and login
	Password string `json:"password,omitempty"`
}

// Auth action names.
const (
	actionRegister      = "register"
	actionLogin         = "login"
	actionLogout        = "logout"
	actionConvert       = "convertToFullSession"
	actionResetPassword = "resetPassword"
)

// profileUpdateRequest mirrors profile.Update on the wire. Absent fields
// stay nil and leave the stored value untouched.
type profileUpdateRequest struct {
	FullName        *string `json:"full_name,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	WhatsappUpdates *bool   `json:"whatsapp_updates,omitempty"`

	Age                       *int            `json:"age,omitempty"`
	MaritalStatus             *string         `json:"marital_status,omitempty"`
	FamilyMembers             *int            `json:"family_members,omitempty"`
	IsPrimaryEarner           *bool           `json:"is_primary_earner,omitempty"`
	RelationWithPrimaryEarner *string         `json:"relation_with_primary_earner,omitempty"`
	Education                 *string         `json:"education,omitempty"`
	Skills                    []profile.Skill `json:"skills,omitempty"`
	HasCertification          *bool           `json:"has_certification,omitempty"`
	Ownership                 []string        `json:"ownership,omitempty"`
	MonthlyFamilyIncome       *float64        `json:"monthly_family_income,omitempty"`
	MonthlyFamilyExpenditure  *float64        `json:"monthly_family_expenditure,omitempty"`
}

func (r *profileUpdateRequest) toUpdate() *profile.Update {
	return &profile.Update{
		FullName:                  r.FullName,
		Gender:                    r.Gender,
		WhatsappUpdates:           r.WhatsappUpdates,
		Age:                       r.Age,
		MaritalStatus:             r.MaritalStatus,
		FamilyMembers:             r.FamilyMembers,
		IsPrimaryEarner:           r.IsPrimaryEarner,
		RelationWithPrimaryEarner: r.RelationWithPrimaryEarner,
		Education:                 r.Education,
		Skills:                    r.Skills,
		HasCertification:          r.HasCertification,
		Ownership:                 r.Ownership,
		MonthlyFamilyIncome:       r.MonthlyFamilyIncome,
		MonthlyFamilyExpenditure:  r.MonthlyFamilyExpenditure,
	}
}

// selectionRequest is the scoring write for PATCH /api/user-details.
type selectionRequest struct {
	Selected             bool    `json:"is_selected"`
	PredictionPercentage float64 `json:"prediction_percentage"`
}
