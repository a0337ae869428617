package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	qb "github.com/skyhigh-allstar/tryouts-api/internal/platform/querybuilder"
)

type RegistrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg registration.Registration, g *guardian.Guardian) error {
	query, args, err := qb.InsertModel("registrations", registrationToInsert(reg), "")
	if err != nil {
		return fmt.Errorf("build insert registration query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for registration create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return registration.ErrDuplicateEmail
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if g != nil {
		if err := insertGuardianTx(ctx, tx, *g); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration create: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (registration.Registration, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *RegistrationRepository) GetByEmail(ctx context.Context, email string) (registration.Registration, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(email) = LOWER(?)", email))
}

func (r *RegistrationRepository) getOne(ctx context.Context, cond qb.Condition) (registration.Registration, bool, error) {
	query, args, err := qb.Select("*").
		From("registrations").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return registration.Registration{}, false, fmt.Errorf("build get registration query: %w", err)
	}

	var row registrationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registration.Registration{}, false, nil
		}
		return registration.Registration{}, false, fmt.Errorf("get registration: %w", err)
	}
	return registrationFromRow(row), true, nil
}

func (r *RegistrationRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").
		From("registrations").
		Where(qb.Expr("LOWER(email) = LOWER(?)", email)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build email exists query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return count > 0, nil
}

func (r *RegistrationRepository) List(ctx context.Context, filter registration.ListFilter) ([]registration.Registration, int, error) {
	conditions := listConditions(filter)

	countQuery, countArgs, err := qb.Select("COUNT(1)").
		From("registrations").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count registrations query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	if total == 0 {
		return []registration.Registration{}, 0, nil
	}

	query, args, err := qb.Select("*").
		From("registrations").
		Where(conditions...).
		OrderBy("created_at DESC", "id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list registrations query: %w", err)
	}

	var rows []registrationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	items := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		items = append(items, registrationFromRow(row))
	}
	return items, total, nil
}

func listConditions(filter registration.ListFilter) []qb.Condition {
	conditions := make([]qb.Condition, 0, 4)
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", string(filter.Status)))
	}
	if filter.AttendanceStatus != "" {
		conditions = append(conditions, qb.Eq("attendance_status", string(filter.AttendanceStatus)))
	}
	if filter.PaymentStatus != "" {
		conditions = append(conditions, qb.Eq("payment_status", string(filter.PaymentStatus)))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, qb.OrAny(
			qb.ILike("full_name", pattern),
			qb.ILike("email", pattern),
		))
	}
	return conditions
}

func (r *RegistrationRepository) UpdateAttendance(ctx context.Context, id string, status registration.AttendanceStatus) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("attendance_status", string(status))
	})
}

func (r *RegistrationRepository) UpdatePayment(ctx context.Context, id string, status registration.PaymentStatus) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("payment_status", string(status))
	})
}

func (r *RegistrationRepository) UpdatePaymentProofURL(ctx context.Context, id, url string) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("payment_proof_url", url)
	})
}

func (r *RegistrationRepository) UpdatePhotoURL(ctx context.Context, id, url string) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("photo_url", url)
	})
}

func (r *RegistrationRepository) UpdateTryoutNumber(ctx context.Context, id string, number int) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("tryout_number", number)
	})
}

func (r *RegistrationRepository) UpdateScheduledTryoutDate(ctx context.Context, id string, date *time.Time) (registration.Registration, error) {
	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		if date == nil {
			b.SetExpr("scheduled_tryout_date", "NULL")
			return
		}
		b.Set("scheduled_tryout_date", date.UTC())
	})
}

func (r *RegistrationRepository) UpdateReview(ctx context.Context, id string, status registration.Status, assignments []registration.TeamAssignment) (registration.Registration, error) {
	encoded, err := encodeAssignments(assignments)
	if err != nil {
		return registration.Registration{}, fmt.Errorf("encode team assignments: %w", err)
	}

	return r.updateOne(ctx, id, func(b *qb.UpdateBuilder) {
		b.Set("status", string(status))
		b.SetExpr("team_assignments", "?::jsonb", encoded)
	})
}

func (r *RegistrationRepository) updateOne(ctx context.Context, id string, apply func(*qb.UpdateBuilder)) (registration.Registration, error) {
	builder := qb.Update("registrations")
	apply(builder)
	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return registration.Registration{}, fmt.Errorf("build update registration query: %w", err)
	}

	var row registrationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, fmt.Errorf("update registration: %w", err)
	}
	return registrationFromRow(row), nil
}
