package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	qb "github.com/skyhigh-allstar/tryouts-api/internal/platform/querybuilder"
)

type guardianTableModel struct {
	ID             string         `db:"id"`
	RegistrationID string         `db:"registration_id"`
	FullName       string         `db:"full_name"`
	Phone          string         `db:"phone"`
	Email          sql.NullString `db:"email"`
	CPF            sql.NullString `db:"cpf"`
	Relationship   sql.NullString `db:"relationship"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type guardianInsertModel struct {
	ID             string    `db:"id"`
	RegistrationID string    `db:"registration_id"`
	FullName       string    `db:"full_name"`
	Phone          string    `db:"phone"`
	Email          *string   `db:"email"`
	CPF            *string   `db:"cpf"`
	Relationship   *string   `db:"relationship"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type GuardianRepository struct {
	db *sqlx.DB
}

func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

func (r *GuardianRepository) GetByRegistrationID(ctx context.Context, registrationID string) (guardian.Guardian, bool, error) {
	query, args, err := qb.Select("*").
		From("guardians").
		Where(qb.Eq("registration_id", registrationID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return guardian.Guardian{}, false, fmt.Errorf("build get guardian query: %w", err)
	}

	var row guardianTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return guardian.Guardian{}, false, nil
		}
		return guardian.Guardian{}, false, fmt.Errorf("get guardian: %w", err)
	}
	return guardianFromRow(row), true, nil
}

// insertGuardianTx writes a guardian row inside the caller's transaction so
// the registration or athlete insert and the guardian insert land together.
func insertGuardianTx(ctx context.Context, tx *sqlx.Tx, g guardian.Guardian) error {
	query, args, err := qb.InsertModel("guardians", guardianInsertModel{
		ID:             g.ID,
		RegistrationID: g.RegistrationID,
		FullName:       g.FullName,
		Phone:          g.Phone,
		Email:          optionalString(g.Email),
		CPF:            optionalString(g.CPF),
		Relationship:   optionalString(g.Relationship),
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert guardian query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert guardian: %w", err)
	}
	return nil
}

func guardianFromRow(row guardianTableModel) guardian.Guardian {
	return guardian.Guardian{
		ID:             row.ID,
		RegistrationID: row.RegistrationID,
		FullName:       row.FullName,
		Phone:          row.Phone,
		Email:          strings.TrimSpace(row.Email.String),
		CPF:            strings.TrimSpace(row.CPF.String),
		Relationship:   strings.TrimSpace(row.Relationship.String),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
