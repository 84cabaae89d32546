package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/resource-share-backend/internal/db"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type Repository interface {
	// Create inserts r and increments the parent's reservation counter as one
	// unit. admit runs while the parent is locked and may veto the insert.
	Create(ctx context.Context, r *Reservation, admit AdmitFunc) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, error)

	// Delete removes r and decrements the parent's counter as one unit.
	Delete(ctx context.Context, r *Reservation) error

	// RenameResource refreshes the resource name copied into every
	// reservation of resourceID.
	RenameResource(ctx context.Context, resourceID, name string) error

	// UpdateResource stores the edited name, window and tags of res and
	// renames its reservations as one unit. check sees the resource's current
	// reservations while it is locked and may veto the edit. On success res
	// holds the stored resource.
	UpdateResource(ctx context.Context, res *resource.Resource, check AdmitFunc) error
}

var columns = []string{
	"id", "resource_id", "resource_name", "owner", "start_minute", "end_minute",
	"duration_minutes", "notes", "created_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*Reservation, error) {
	var (
		r                Reservation
		startMin, endMin int
	)
	if err := row.Scan(
		&r.ID, &r.ResourceID, &r.ResourceName, &r.Owner, &startMin, &endMin,
		&r.DurationMinutes, &r.Notes, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	start, err := timeofday.FromMinutes(startMin)
	if err != nil {
		return nil, fmt.Errorf("stored start of reservation %s: %w", r.ID, err)
	}
	end, err := timeofday.FromMinutes(endMin)
	if err != nil {
		return nil, fmt.Errorf("stored end of reservation %s: %w", r.ID, err)
	}
	r.Interval = timeofday.Window{Start: start, End: end}
	return &r, nil
}

func (p *pgxRepository) Create(ctx context.Context, r *Reservation, admit AdmitFunc) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		parent, err := resource.GetForUpdate(ctx, tx, r.ResourceID)
		if err != nil {
			if errors.Is(err, resource.ErrNotFound) {
				return ErrResourceNotFound
			}
			return err
		}

		siblings, err := list(ctx, tx, Filter{ResourceID: r.ResourceID})
		if err != nil {
			return err
		}
		if admit != nil {
			if err := admit(parent, siblings); err != nil {
				return err
			}
		}

		r.ResourceName = parent.Name
		query, args, err := psql.Insert("public.reservations").
			Columns("resource_id", "resource_name", "owner", "start_minute", "end_minute", "duration_minutes", "notes").
			Values(r.ResourceID, r.ResourceName, r.Owner, r.Interval.Start.Minutes(), r.Interval.End.Minutes(),
				r.DurationMinutes, r.Notes).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create reservation query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt); err != nil {
			var e *pgconn.PgError
			if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
				return ErrResourceNotFound
			}
			return fmt.Errorf("create reservation failed: %w", err)
		}

		return resource.AdjustReservationCount(ctx, tx, r.ResourceID, 1)
	})
}

func (p *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query, args, err := psql.Select(columns...).
		From("public.reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	r, err := scanReservation(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return r, nil
}

func (p *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	return list(ctx, p.pool, filter)
}

func list(ctx context.Context, q db.Querier, filter Filter) ([]*Reservation, error) {
	query := psql.Select(columns...).From("public.reservations")
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"resource_id": filter.ResourceID})
	}
	if filter.Owner != "" {
		query = query.Where(squirrel.Eq{"owner": filter.Owner})
	}
	query = query.OrderBy("start_minute ASC", "created_at ASC", "id ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	result := []*Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations failed: %w", err)
	}
	return result, nil
}

func (p *pgxRepository) Delete(ctx context.Context, r *Reservation) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := resource.GetForUpdate(ctx, tx, r.ResourceID); err != nil {
			if errors.Is(err, resource.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		query, args, err := psql.Delete("public.reservations").
			Where(squirrel.Eq{"id": r.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete reservation query failed: %w", err)
		}

		ct, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete reservation failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}

		return resource.AdjustReservationCount(ctx, tx, r.ResourceID, -1)
	})
}

func (p *pgxRepository) RenameResource(ctx context.Context, resourceID, name string) error {
	return renameResource(ctx, p.pool, resourceID, name)
}

func renameResource(ctx context.Context, q db.Querier, resourceID, name string) error {
	query, args, err := psql.Update("public.reservations").
		Set("resource_name", name).
		Where(squirrel.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rename reservations query failed: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("rename reservations failed: %w", err)
	}
	return nil
}

func (p *pgxRepository) UpdateResource(ctx context.Context, res *resource.Resource, check AdmitFunc) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		current, err := resource.GetForUpdate(ctx, tx, res.ID)
		if err != nil {
			return err
		}

		siblings, err := list(ctx, tx, Filter{ResourceID: res.ID})
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current, siblings); err != nil {
				return err
			}
		}

		renamed := current.Name != res.Name
		applyEdit(current, res)
		if err := resource.Update(ctx, tx, current); err != nil {
			return err
		}
		if renamed {
			if err := renameResource(ctx, tx, current.ID, current.Name); err != nil {
				return err
			}
		}

		*res = *current
		return nil
	})
}

// applyEdit copies the owner-editable fields onto the locked resource so the
// counters and image read under the lock are the ones written back.
func applyEdit(current, edited *resource.Resource) {
	current.Name = edited.Name
	current.Window = edited.Window
	current.DurationMinutes = edited.DurationMinutes
	current.Tags = edited.Tags
}
