package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planbook/internal/db"
	"github.com/alexanderramin/planbook/internal/domain"
	"github.com/alexanderramin/planbook/internal/record"
)

// planColumns is the canonical SELECT column list for plan_definitions.
const planColumns = `id, alias, culture, name, description, created_date, created_by,
		last_modified_date, last_modified_by, classifications, start_date, end_date,
		context_key_factory_type, entry_activity_id, reentry_mode, is_active`

// SQLitePlanRecordRepo implements PlanRecordRepo on SQLite. Save issues
// several statements; run it through a UnitOfWork to make it atomic.
type SQLitePlanRecordRepo struct {
	db db.DBTX
}

// NewSQLitePlanRecordRepo creates a new SQLitePlanRecordRepo.
func NewSQLitePlanRecordRepo(conn db.DBTX) *SQLitePlanRecordRepo {
	return &SQLitePlanRecordRepo{db: conn}
}

func (r *SQLitePlanRecordRepo) Save(ctx context.Context, rec *record.PlanRecord) error {
	if rec == nil {
		return domain.NewNullInputError("record")
	}

	classifications, err := nullableJSON(rec.Classifications, rec.Classifications == nil)
	if err != nil {
		return fmt.Errorf("encoding classifications: %w", err)
	}

	query := `INSERT INTO plan_definitions (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			alias = excluded.alias,
			culture = excluded.culture,
			name = excluded.name,
			description = excluded.description,
			created_date = excluded.created_date,
			created_by = excluded.created_by,
			last_modified_date = excluded.last_modified_date,
			last_modified_by = excluded.last_modified_by,
			classifications = excluded.classifications,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			context_key_factory_type = excluded.context_key_factory_type,
			entry_activity_id = excluded.entry_activity_id,
			reentry_mode = excluded.reentry_mode,
			is_active = excluded.is_active`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Alias,
		rec.Culture.String(),
		rec.Name,
		rec.Description,
		formatTime(rec.CreatedDate),
		rec.CreatedBy,
		nullableTimeToString(rec.LastModifiedDate),
		rec.LastModifiedBy,
		classifications,
		nullableTimeToString(rec.StartDate),
		nullableTimeToString(rec.EndDate),
		rec.ContextKeyFactoryType,
		rec.EntryActivityID,
		string(rec.ReentryMode),
		boolToInt(rec.IsActive),
	)
	if err != nil {
		return fmt.Errorf("upserting plan %s: %w", rec.ID, err)
	}

	if err := r.replaceActivities(ctx, rec); err != nil {
		return err
	}
	return r.replaceUniversalActivities(ctx, rec)
}

func (r *SQLitePlanRecordRepo) replaceActivities(ctx context.Context, rec *record.PlanRecord) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plan_activities WHERE plan_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("clearing activities for plan %s: %w", rec.ID, err)
	}

	query := `INSERT INTO plan_activities (plan_id, position, id, activity_type_id, parameters, paths)
		VALUES (?, ?, ?, ?, ?, ?)`
	for i, a := range rec.GetActivities() {
		if a == nil {
			return fmt.Errorf("plan %s activity %d: %w", rec.ID, i, domain.NewNullInputError("activity record"))
		}
		params, err := nullableJSON(a.Parameters, a.Parameters == nil)
		if err != nil {
			return fmt.Errorf("encoding parameters of activity %s: %w", a.ID, err)
		}
		paths, err := nullableJSON(a.Paths, a.Paths == nil)
		if err != nil {
			return fmt.Errorf("encoding paths of activity %s: %w", a.ID, err)
		}
		if _, err := r.db.ExecContext(ctx, query, rec.ID, i, a.ID, a.ActivityTypeID, params, paths); err != nil {
			return fmt.Errorf("inserting activity %s: %w", a.ID, err)
		}
	}
	return nil
}

func (r *SQLitePlanRecordRepo) replaceUniversalActivities(ctx context.Context, rec *record.PlanRecord) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plan_universal_activities WHERE plan_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("clearing universal activities for plan %s: %w", rec.ID, err)
	}

	query := `INSERT INTO plan_universal_activities
		(plan_id, position, id, activity_type_id, parameters, plan_processing_position, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for i, u := range rec.GetUniversalActivities() {
		if u == nil {
			return fmt.Errorf("plan %s universal activity %d: %w", rec.ID, i, domain.NewNullInputError("universal activity record"))
		}
		params, err := nullableJSON(u.Parameters, u.Parameters == nil)
		if err != nil {
			return fmt.Errorf("encoding parameters of universal activity %s: %w", u.ID, err)
		}
		if _, err := r.db.ExecContext(ctx, query,
			rec.ID, i, u.ID, u.ActivityTypeID, params, string(u.PlanProcessingPosition), u.Order,
		); err != nil {
			return fmt.Errorf("inserting universal activity %s: %w", u.ID, err)
		}
	}
	return nil
}

func (r *SQLitePlanRecordRepo) GetByID(ctx context.Context, id string) (*record.PlanRecord, error) {
	query := `SELECT ` + planColumns + ` FROM plan_definitions WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *SQLitePlanRecordRepo) GetByAlias(ctx context.Context, alias string) (*record.PlanRecord, error) {
	query := `SELECT ` + planColumns + ` FROM plan_definitions WHERE alias = ?`
	return r.getOne(ctx, query, alias)
}

func (r *SQLitePlanRecordRepo) getOne(ctx context.Context, query string, arg string) (*record.PlanRecord, error) {
	rec, err := scanPlan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %q: %w", arg, ErrNotFound)
		}
		return nil, err
	}
	if err := r.loadActivities(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SQLitePlanRecordRepo) List(ctx context.Context) ([]*record.PlanRecord, error) {
	query := `SELECT ` + planColumns + ` FROM plan_definitions ORDER BY created_date, alias`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}

	var plans []*record.PlanRecord
	for rows.Next() {
		rec, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		plans = append(plans, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	// Release the cursor before loading children; the store may run on a
	// single connection.
	rows.Close()

	for _, rec := range plans {
		if err := r.loadActivities(ctx, rec); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (r *SQLitePlanRecordRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE plan_definitions SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("updating activation of plan %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func (r *SQLitePlanRecordRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plan_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLitePlanRecordRepo) loadActivities(ctx context.Context, rec *record.PlanRecord) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, activity_type_id, parameters, paths
		FROM plan_activities WHERE plan_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("listing activities of plan %s: %w", rec.ID, err)
	}
	for rows.Next() {
		var a record.ActivityRecord
		var params, paths sql.NullString
		if err := rows.Scan(&a.ID, &a.ActivityTypeID, &params, &paths); err != nil {
			rows.Close()
			return fmt.Errorf("scanning activity row: %w", err)
		}
		if err := decodeNullableJSON(params, &a.Parameters); err != nil {
			rows.Close()
			return fmt.Errorf("decoding parameters of activity %s: %w", a.ID, err)
		}
		if err := decodeNullableJSON(paths, &a.Paths); err != nil {
			rows.Close()
			return fmt.Errorf("decoding paths of activity %s: %w", a.ID, err)
		}
		rec.AddActivity(&a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating activities: %w", err)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx,
		`SELECT id, activity_type_id, parameters, plan_processing_position, sort_order
		FROM plan_universal_activities WHERE plan_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return fmt.Errorf("listing universal activities of plan %s: %w", rec.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var u record.UniversalActivityRecord
		var params sql.NullString
		var position string
		if err := rows.Scan(&u.ID, &u.ActivityTypeID, &params, &position, &u.Order); err != nil {
			return fmt.Errorf("scanning universal activity row: %w", err)
		}
		if err := decodeNullableJSON(params, &u.Parameters); err != nil {
			return fmt.Errorf("decoding parameters of universal activity %s: %w", u.ID, err)
		}
		u.PlanProcessingPosition = domain.PlanProcessingPosition(position)
		rec.AddUniversalActivity(&u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating universal activities: %w", err)
	}
	return nil
}

// scanPlan reads one plan_definitions row selected with planColumns.
// Activities are loaded separately.
func scanPlan(row scanner) (*record.PlanRecord, error) {
	var rec record.PlanRecord
	var culture, createdDate, reentry string
	var lastModified, classifications, startDate, endDate sql.NullString
	var isActive int

	err := row.Scan(
		&rec.ID, &rec.Alias, &culture, &rec.Name, &rec.Description, &createdDate, &rec.CreatedBy,
		&lastModified, &rec.LastModifiedBy, &classifications, &startDate, &endDate,
		&rec.ContextKeyFactoryType, &rec.EntryActivityID, &reentry, &isActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}

	if rec.Culture, err = parseCulture(culture); err != nil {
		return nil, err
	}
	if rec.CreatedDate, err = time.Parse(timeLayout, createdDate); err != nil {
		return nil, fmt.Errorf("parsing created_date: %w", err)
	}
	if rec.LastModifiedDate, err = parseNullableTime(lastModified); err != nil {
		return nil, fmt.Errorf("parsing last_modified_date: %w", err)
	}
	if rec.StartDate, err = parseNullableTime(startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if rec.EndDate, err = parseNullableTime(endDate); err != nil {
		return nil, fmt.Errorf("parsing end_date: %w", err)
	}
	if err := decodeNullableJSON(classifications, &rec.Classifications); err != nil {
		return nil, fmt.Errorf("decoding classifications: %w", err)
	}

	rec.ReentryMode = domain.ReentryMode(reentry)
	rec.IsActive = intToBool(isActive)
	return &rec, nil
}
