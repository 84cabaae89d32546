package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/resource-share-backend/internal/db"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)

	// Update persists the editable fields (name, window, tags, image).
	// Counters are only changed through AdjustReservationCount.
	Update(ctx context.Context, res *Resource) error

	// AdjustReservationCount applies delta (+1 or -1) to the counter.
	// A positive delta also marks the resource as reserved and bumps its
	// last activity time.
	AdjustReservationCount(ctx context.Context, id string, delta int) error
}

var columns = []string{
	"id", "name", "owner", "start_minute", "end_minute", "duration_minutes",
	"tags", "image_id", "created_at", "last_activity_at",
	"reservation_count", "has_been_reserved",
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

func scanResource(row rowScanner, extra ...any) (*Resource, error) {
	var (
		res              Resource
		startMin, endMin int
	)
	dest := []any{
		&res.ID, &res.Name, &res.Owner, &startMin, &endMin, &res.DurationMinutes,
		&res.Tags, &res.ImageID, &res.CreatedAt, &res.LastActivityAt,
		&res.ReservationCount, &res.HasBeenReserved,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	start, err := timeofday.FromMinutes(startMin)
	if err != nil {
		return nil, fmt.Errorf("stored start of resource %s: %w", res.ID, err)
	}
	end, err := timeofday.FromMinutes(endMin)
	if err != nil {
		return nil, fmt.Errorf("stored end of resource %s: %w", res.ID, err)
	}
	res.Window = timeofday.Window{Start: start, End: end}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	return &res, nil
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	query, args, err := psql.Insert("public.resources").
		Columns("name", "owner", "start_minute", "end_minute", "duration_minutes", "tags", "image_id").
		Values(res.Name, res.Owner, res.Window.Start.Minutes(), res.Window.End.Minutes(),
			res.DurationMinutes, res.Tags, res.ImageID).
		Suffix("RETURNING id, created_at, last_activity_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&res.ID, &res.CreatedAt, &res.LastActivityAt); err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	return getByID(ctx, r.pool, id, false)
}

// GetForUpdate reads a resource and locks its row until q's transaction ends.
// It serializes every reservation change on the same resource.
func GetForUpdate(ctx context.Context, q db.Querier, id string) (*Resource, error) {
	return getByID(ctx, q, id, true)
}

func getByID(ctx context.Context, q db.Querier, id string, lock bool) (*Resource, error) {
	builder := psql.Select(columns...).
		From("public.resources").
		Where(squirrel.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	res, err := scanResource(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return res, nil
}

var sortColumns = map[string]string{
	SortByCreatedAt:      "created_at",
	SortByLastActivityAt: "last_activity_at",
	SortByName:           "name",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	query := psql.Select(append(columns, "count(*) OVER() AS total_count")...).
		From("public.resources")

	if filter.Owner != "" {
		query = query.Where(squirrel.Eq{"owner": filter.Owner})
	}
	if filter.Tag != "" {
		query = query.Where(squirrel.Expr("? = ANY(tags)", filter.Tag))
	}
	if filter.NameQuery != "" {
		query = query.Where(squirrel.ILike{"name": "%" + escapeLike(filter.NameQuery) + "%"})
	}
	if filter.Fits != nil {
		query = query.
			Where(squirrel.LtOrEq{"start_minute": filter.Fits.Start.Minutes()}).
			Where(squirrel.GtOrEq{"end_minute": filter.Fits.End.Minutes()})
	}

	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id "+orderDir)

	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		query = query.Limit(uint64(filter.PageSize)).Offset(uint64((page - 1) * filter.PageSize))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	result := []*Resource{}
	var total int
	for rows.Next() {
		res, err := scanResource(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate resources failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	return Update(ctx, r.pool, res)
}

// Update writes the editable fields of res. The reservation repository calls
// it inside the transaction that holds the resource row lock.
func Update(ctx context.Context, q db.Querier, res *Resource) error {
	query, args, err := psql.Update("public.resources").
		Set("name", res.Name).
		Set("start_minute", res.Window.Start.Minutes()).
		Set("end_minute", res.Window.End.Minutes()).
		Set("duration_minutes", res.DurationMinutes).
		Set("tags", res.Tags).
		Set("image_id", res.ImageID).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource query failed: %w", err)
	}

	ct, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) AdjustReservationCount(ctx context.Context, id string, delta int) error {
	return AdjustReservationCount(ctx, r.pool, id, delta)
}

// AdjustReservationCount is the counter update shared with the reservation
// repository, which calls it inside its own transaction.
func AdjustReservationCount(ctx context.Context, q db.Querier, id string, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}

	builder := psql.Update("public.resources").
		Set("reservation_count", squirrel.Expr("reservation_count + ?", delta)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("reservation_count + ? >= 0", delta))
	if delta > 0 {
		builder = builder.
			Set("has_been_reserved", true).
			Set("last_activity_at", squirrel.Expr("now()"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build adjust reservation count query failed: %w", err)
	}

	ct, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("adjust reservation count failed: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.resources WHERE id = $1)", id).
		Scan(&exists); err != nil {
		return fmt.Errorf("check resource exists failed: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return fmt.Errorf("%w: resource %s", ErrInvariantViolation, id)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
