package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

// PostgresStore persists profiles in PostgreSQL. Skill tuples are flattened
// into three column triplets to match the form's fixed shape.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, p *Profile) error {
	skills := flattenSkills(p.Skills)
	query := `
		INSERT INTO profiles (
			account_id, full_name, gender, whatsapp_updates,
			age, marital_status, family_members, is_primary_earner,
			relation_with_primary_earner, education,
			skill_1, skill_1_rating, skill_1_years,
			skill_2, skill_2_rating, skill_2_years,
			skill_3, skill_3_rating, skill_3_years,
			has_certification, ownership,
			monthly_family_income, monthly_family_expenditure,
			is_selected, prediction_percentage,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (account_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			gender = EXCLUDED.gender,
			whatsapp_updates = EXCLUDED.whatsapp_updates,
			age = EXCLUDED.age,
			marital_status = EXCLUDED.marital_status,
			family_members = EXCLUDED.family_members,
			is_primary_earner = EXCLUDED.is_primary_earner,
			relation_with_primary_earner = EXCLUDED.relation_with_primary_earner,
			education = EXCLUDED.education,
			skill_1 = EXCLUDED.skill_1,
			skill_1_rating = EXCLUDED.skill_1_rating,
			skill_1_years = EXCLUDED.skill_1_years,
			skill_2 = EXCLUDED.skill_2,
			skill_2_rating = EXCLUDED.skill_2_rating,
			skill_2_years = EXCLUDED.skill_2_years,
			skill_3 = EXCLUDED.skill_3,
			skill_3_rating = EXCLUDED.skill_3_rating,
			skill_3_years = EXCLUDED.skill_3_years,
			has_certification = EXCLUDED.has_certification,
			ownership = EXCLUDED.ownership,
			monthly_family_income = EXCLUDED.monthly_family_income,
			monthly_family_expenditure = EXCLUDED.monthly_family_expenditure,
			is_selected = EXCLUDED.is_selected,
			prediction_percentage = EXCLUDED.prediction_percentage,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.AccountID), p.FullName, p.Gender, p.WhatsappUpdates,
		p.Age, p.MaritalStatus, p.FamilyMembers, p.IsPrimaryEarner,
		p.RelationWithPrimaryEarner, p.Education,
		skills[0].name, skills[0].rating, skills[0].years,
		skills[1].name, skills[1].rating, skills[1].years,
		skills[2].name, skills[2].rating, skills[2].years,
		p.HasCertification, pq.Array(p.Ownership),
		p.MonthlyFamilyIncome, p.MonthlyFamilyExpenditure,
		p.Selected, p.PredictionPercentage,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAccount(ctx context.Context, accountID id.AccountID) (*Profile, error) {
	query := `
		SELECT account_id, full_name, gender, whatsapp_updates,
			age, marital_status, family_members, is_primary_earner,
			relation_with_primary_earner, education,
			skill_1, skill_1_rating, skill_1_years,
			skill_2, skill_2_rating, skill_2_years,
			skill_3, skill_3_rating, skill_3_years,
			has_certification, ownership,
			monthly_family_income, monthly_family_expenditure,
			is_selected, prediction_percentage,
			created_at, updated_at
		FROM profiles WHERE account_id = $1
	`
	var (
		p      Profile
		rawID  uuid.UUID
		skills [MaxSkills]flatSkill
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(accountID)).Scan(
		&rawID, &p.FullName, &p.Gender, &p.WhatsappUpdates,
		&p.Age, &p.MaritalStatus, &p.FamilyMembers, &p.IsPrimaryEarner,
		&p.RelationWithPrimaryEarner, &p.Education,
		&skills[0].name, &skills[0].rating, &skills[0].years,
		&skills[1].name, &skills[1].rating, &skills[1].years,
		&skills[2].name, &skills[2].rating, &skills[2].years,
		&p.HasCertification, pq.Array(&p.Ownership),
		&p.MonthlyFamilyIncome, &p.MonthlyFamilyExpenditure,
		&p.Selected, &p.PredictionPercentage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.AccountID = id.AccountID(rawID)
	p.Skills = unflattenSkills(skills)
	return &p, nil
}

// flatSkill mirrors the nullable skill column triplet.
type flatSkill struct {
	name   *string
	rating *int
	years  *int
}

func flattenSkills(skills []Skill) [MaxSkills]flatSkill {
	var flat [MaxSkills]flatSkill
	for i := range skills {
		if i >= MaxSkills {
			break
		}
		s := skills[i]
		flat[i] = flatSkill{name: &s.Name, rating: &s.Rating, years: &s.Years}
	}
	return flat
}

func unflattenSkills(flat [MaxSkills]flatSkill) []Skill {
	var skills []Skill
	for _, f := range flat {
		if f.name == nil || *f.name == "" {
			continue
		}
		s := Skill{Name: *f.name}
		if f.rating != nil {
			s.Rating = *f.rating
		}
		if f.years != nil {
			s.Years = *f.years
		}
		skills = append(skills, s)
	}
	return skills
}
