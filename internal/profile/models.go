package profile

import (
	"time"

	id "sahay/pkg/domain"
	dErrors "sahay/pkg/domain-errors"
	pstrings "sahay/pkg/platform/strings"
)

// MaxSkills bounds the number of skill tuples a profile can carry.
const MaxSkills = 3

// Skill is one self-reported skill with a 1-5 rating and years of experience.
type Skill struct {
	Name   string `json:"skill"`
	Rating int    `json:"rating"`
	Years  int    `json:"years"`
}

// Profile is the socioeconomic onboarding record, one-to-one with an
// account. It stores the account ID as a weak reference and does not own
// the account's lifecycle.
//
// Selected and PredictionPercentage are written only by the external
// scoring step; form-driven updates must never touch them.
type Profile struct {
	AccountID       id.AccountID `json:"account_id"`
	FullName        string       `json:"full_name"`
	Gender          string       `json:"gender"`
	WhatsappUpdates bool         `json:"whatsapp_updates"`

	Age                       *int     `json:"age,omitempty"`
	MaritalStatus             *string  `json:"marital_status,omitempty"`
	FamilyMembers             *int     `json:"family_members,omitempty"`
	IsPrimaryEarner           *bool    `json:"is_primary_earner,omitempty"`
	RelationWithPrimaryEarner *string  `json:"relation_with_primary_earner,omitempty"`
	Education                 *string  `json:"education,omitempty"`
	Skills                    []Skill  `json:"skills,omitempty"`
	HasCertification          *bool    `json:"has_certification,omitempty"`
	Ownership                 []string `json:"ownership,omitempty"`
	MonthlyFamilyIncome       *float64 `json:"monthly_family_income,omitempty"`
	MonthlyFamilyExpenditure  *float64 `json:"monthly_family_expenditure,omitempty"`

	Selected             bool     `json:"is_selected"`
	PredictionPercentage *float64 `json:"prediction_percentage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update carries a partial profile revision. Nil fields are left unchanged
// by ApplyUpdate, which is what makes repeated partial submissions
// non-destructive.
type Update struct {
	FullName        *string
	Gender          *string
	WhatsappUpdates *bool

	Age                       *int
	MaritalStatus             *string
	FamilyMembers             *int
	IsPrimaryEarner           *bool
	RelationWithPrimaryEarner *string
	Education                 *string
	Skills                    []Skill
	HasCertification          *bool
	Ownership                 []string
	MonthlyFamilyIncome       *float64
	MonthlyFamilyExpenditure  *float64
}

// Validate checks the revision against model invariants.
func (u *Update) Validate() error {
	if len(u.Skills) > MaxSkills {
		return dErrors.New(dErrors.CodeValidation, "at most three skills are allowed")
	}
	for _, s := range u.Skills {
		if s.Rating < 0 || s.Rating > 5 {
			return dErrors.New(dErrors.CodeValidation, "skill rating must be between 0 and 5")
		}
		if s.Years < 0 {
			return dErrors.New(dErrors.CodeValidation, "skill years cannot be negative")
		}
	}
	if u.Age != nil && (*u.Age < 0 || *u.Age > 150) {
		return dErrors.New(dErrors.CodeValidation, "age is out of range")
	}
	if u.FamilyMembers != nil && *u.FamilyMembers < 1 {
		return dErrors.New(dErrors.CodeValidation, "family members must be at least 1")
	}
	if u.MonthlyFamilyIncome != nil && *u.MonthlyFamilyIncome < 0 {
		return dErrors.New(dErrors.CodeValidation, "income cannot be negative")
	}
	if u.MonthlyFamilyExpenditure != nil && *u.MonthlyFamilyExpenditure < 0 {
		return dErrors.New(dErrors.CodeValidation, "expenditure cannot be negative")
	}
	return nil
}

// New constructs an empty profile for an account.
func New(accountID id.AccountID, now time.Time) *Profile {
	return &Profile{
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyUpdate merges a partial revision into the profile. Selection fields
// are untouched regardless of what the caller sends.
func (p *Profile) ApplyUpdate(u *Update, now time.Time) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.WhatsappUpdates != nil {
		p.WhatsappUpdates = *u.WhatsappUpdates
	}
	if u.Age != nil {
		p.Age = u.Age
	}
	if u.MaritalStatus != nil {
		p.MaritalStatus = u.MaritalStatus
	}
	if u.FamilyMembers != nil {
		p.FamilyMembers = u.FamilyMembers
	}
	if u.IsPrimaryEarner != nil {
		p.IsPrimaryEarner = u.IsPrimaryEarner
	}
	if u.RelationWithPrimaryEarner != nil {
		p.RelationWithPrimaryEarner = u.RelationWithPrimaryEarner
	}
	if u.Education != nil {
		p.Education = u.Education
	}
	if u.Skills != nil {
		p.Skills = u.Skills
	}
	if u.HasCertification != nil {
		p.HasCertification = u.HasCertification
	}
	if u.Ownership != nil {
		p.Ownership = pstrings.DedupeAndTrim(u.Ownership)
	}
	if u.MonthlyFamilyIncome != nil {
		p.MonthlyFamilyIncome = u.MonthlyFamilyIncome
	}
	if u.MonthlyFamilyExpenditure != nil {
		p.MonthlyFamilyExpenditure = u.MonthlyFamilyExpenditure
	}
	p.UpdatedAt = now
}

// ApplySelection records the scoring outcome. Owned by the external
// scoring step, never by the onboarding form.
func (p *Profile) ApplySelection(selected bool, predictionPercentage float64, now time.Time) {
	p.Selected = selected
	p.PredictionPercentage = &predictionPercentage
	p.UpdatedAt = now
}

// Complete reports whether the minimal required subset of onboarding
// fields has been filled in. Session promotion hinges on this predicate.
func (p *Profile) Complete() bool {
	return p.Age != nil && p.MaritalStatus != nil && p.FamilyMembers != nil
}
