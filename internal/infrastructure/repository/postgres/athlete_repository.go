package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	qb "github.com/skyhigh-allstar/tryouts-api/internal/platform/querybuilder"
)

type athleteTableModel struct {
	ID             string         `db:"id"`
	RegistrationID string         `db:"registration_id"`
	FullLegalName  string         `db:"full_legal_name"`
	CPF            string         `db:"cpf"`
	RG             sql.NullString `db:"rg"`
	BirthDate      time.Time      `db:"birth_date"`
	Nationality    sql.NullString `db:"nationality"`
	Instagram      sql.NullString `db:"instagram"`
	ShirtSize      sql.NullString `db:"shirt_size"`

	EmergencyContactName         string         `db:"emergency_contact_name"`
	EmergencyContactPhone        string         `db:"emergency_contact_phone"`
	EmergencyContactRelationship sql.NullString `db:"emergency_contact_relationship"`

	PhotoURL  sql.NullString `db:"photo_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type athleteInsertModel struct {
	ID             string    `db:"id"`
	RegistrationID string    `db:"registration_id"`
	FullLegalName  string    `db:"full_legal_name"`
	CPF            string    `db:"cpf"`
	RG             *string   `db:"rg"`
	BirthDate      time.Time `db:"birth_date"`
	Nationality    *string   `db:"nationality"`
	Instagram      *string   `db:"instagram"`
	ShirtSize      *string   `db:"shirt_size"`

	EmergencyContactName         string  `db:"emergency_contact_name"`
	EmergencyContactPhone        string  `db:"emergency_contact_phone"`
	EmergencyContactRelationship *string `db:"emergency_contact_relationship"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AthleteRepository struct {
	db *sqlx.DB
}

func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

func (r *AthleteRepository) CreateWithGuardian(ctx context.Context, a athlete.Athlete, g *guardian.Guardian) error {
	query, args, err := qb.InsertModel("athletes", athleteInsertModel{
		ID:                           a.ID,
		RegistrationID:               a.RegistrationID,
		FullLegalName:                a.FullLegalName,
		CPF:                          a.CPF,
		RG:                           optionalString(a.RG),
		BirthDate:                    a.BirthDate,
		Nationality:                  optionalString(a.Nationality),
		Instagram:                    optionalString(a.Instagram),
		ShirtSize:                    optionalString(a.ShirtSize),
		EmergencyContactName:         a.EmergencyContactName,
		EmergencyContactPhone:        a.EmergencyContactPhone,
		EmergencyContactRelationship: optionalString(a.EmergencyContactRelationship),
		CreatedAt:                    a.CreatedAt,
		UpdatedAt:                    a.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert athlete query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for athlete create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: registration %s", athlete.ErrAlreadyExists, a.RegistrationID)
		}
		return fmt.Errorf("insert athlete: %w", err)
	}

	if g != nil {
		if err := insertGuardianTx(ctx, tx, *g); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit athlete create: %w", err)
	}
	return nil
}

func (r *AthleteRepository) GetByRegistrationID(ctx context.Context, registrationID string) (athlete.Athlete, bool, error) {
	query, args, err := qb.Select("*").
		From("athletes").
		Where(qb.Eq("registration_id", registrationID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return athlete.Athlete{}, false, fmt.Errorf("build get athlete query: %w", err)
	}

	var row athleteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return athlete.Athlete{}, false, nil
		}
		return athlete.Athlete{}, false, fmt.Errorf("get athlete: %w", err)
	}
	return athleteFromRow(row), true, nil
}

func (r *AthleteRepository) UpdatePhotoURL(ctx context.Context, registrationID, url string) (athlete.Athlete, error) {
	query, args, err := qb.Update("athletes").
		Set("photo_url", url).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("registration_id", registrationID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("build update athlete photo query: %w", err)
	}

	var row athleteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return athlete.Athlete{}, fmt.Errorf("no athlete for registration %s", registrationID)
		}
		return athlete.Athlete{}, fmt.Errorf("update athlete photo: %w", err)
	}
	return athleteFromRow(row), nil
}

func athleteFromRow(row athleteTableModel) athlete.Athlete {
	return athlete.Athlete{
		ID:                           row.ID,
		RegistrationID:               row.RegistrationID,
		FullLegalName:                row.FullLegalName,
		CPF:                          row.CPF,
		RG:                           strings.TrimSpace(row.RG.String),
		BirthDate:                    row.BirthDate,
		Nationality:                  strings.TrimSpace(row.Nationality.String),
		Instagram:                    strings.TrimSpace(row.Instagram.String),
		ShirtSize:                    strings.TrimSpace(row.ShirtSize.String),
		EmergencyContactName:         row.EmergencyContactName,
		EmergencyContactPhone:        row.EmergencyContactPhone,
		EmergencyContactRelationship: strings.TrimSpace(row.EmergencyContactRelationship.String),
		PhotoURL:                     strings.TrimSpace(row.PhotoURL.String),
		CreatedAt:                    row.CreatedAt,
		UpdatedAt:                    row.UpdatedAt,
	}
}
