package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/event"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

var eventColumns = []string{
	"id",
	"name",
	"starts_at",
	"location",
	"team_id",
	"creator_id",
	"coach_id",
	"email_sent",
	"push_sent",
	"created_at",
	"updated_at",
}

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, ev event.Event) (event.Event, error) {
	insertModel := eventInsertModel{
		Name:      ev.Name,
		StartsAt:  ev.StartsAt.UTC(),
		Location:  ev.Location,
		TeamID:    nullInt64(ev.TeamID),
		CreatorID: ev.CreatorID,
		CoachID:   nullInt64(ev.CoachID),
		EmailSent: ev.EmailSent,
		PushSent:  ev.PushSent,
	}
	query, args, err := qb.InsertModel("events", insertModel, "RETURNING "+joinColumns(eventColumns))
	if err != nil {
		return event.Event{}, fmt.Errorf("build insert event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return eventFromRow(row), nil
}

func (r *EventRepository) Update(ctx context.Context, ev event.Event) (event.Event, error) {
	query, args, err := qb.Update("events").
		Set("name", ev.Name).
		Set("starts_at", ev.StartsAt.UTC()).
		Set("location", ev.Location).
		Set("team_id", nullInt64(ev.TeamID)).
		Set("coach_id", nullInt64(ev.CoachID)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", ev.ID)).
		Suffix("RETURNING " + joinColumns(eventColumns)).
		ToSQL()
	if err != nil {
		return event.Event{}, fmt.Errorf("build update event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, fmt.Errorf("update event id=%d: %w", ev.ID, event.ErrNotFound)
		}
		return event.Event{}, fmt.Errorf("update event id=%d: %w", ev.ID, err)
	}
	return eventFromRow(row), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns...).
		From("events").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event id=%d: %w", id, err)
	}
	return eventFromRow(row), true, nil
}

func (r *EventRepository) GetByIDs(ctx context.Context, ids []int64) ([]event.Event, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []event.Event{}, nil
	}

	query, args, err := qb.Select(eventColumns...).
		From("events").
		Where(qb.InInt64("id", ids)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func (r *EventRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return r.selectIDs(ctx, "list event ids", qb.Select("id").From("events").OrderBy("id"))
}

func (r *EventRepository) ListIDsByCreator(ctx context.Context, creatorID int64) ([]int64, error) {
	return r.selectIDs(ctx, "list events by creator",
		qb.Select("id").From("events").Where(qb.Eq("creator_id", creatorID)).OrderBy("id"))
}

func (r *EventRepository) ListIDsByLegacyTeams(ctx context.Context, teamIDs []int64) ([]int64, error) {
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}
	return r.selectIDs(ctx, "list events by legacy teams",
		qb.Select("id").From("events").Where(qb.InInt64("team_id", teamIDs)).OrderBy("id"))
}

func (r *EventRepository) ListIDsByLinkedTeams(ctx context.Context, teamIDs []int64) ([]int64, error) {
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}
	return r.selectIDs(ctx, "list events by linked teams",
		qb.Select("DISTINCT event_id").From("event_teams").Where(qb.InInt64("team_id", teamIDs)).OrderBy("event_id"))
}

func (r *EventRepository) MarkNotified(ctx context.Context, id int64, emailSent, pushSent bool) error {
	query, args, err := qb.Update("events").
		Set("email_sent", emailSent).
		Set("push_sent", pushSent).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark event notified query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark event notified id=%d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected mark event notified: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark event notified id=%d: %w", id, event.ErrNotFound)
	}
	return nil
}

func (r *EventRepository) ListTeamIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return listTeamIDs(ctx, r.db, eventID)
}

func (r *EventRepository) ListTeamIDsByEvents(ctx context.Context, eventIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(eventIDs))
	eventIDs = event.NormalizeIDs(eventIDs)
	if len(eventIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("event_id", "team_id").
		From("event_teams").
		Where(qb.InInt64("event_id", eventIDs)).
		OrderBy("event_id", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list event team links query: %w", err)
	}

	var rows []eventTeamLinkModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list event team links: %w", err)
	}
	for _, id := range eventIDs {
		out[id] = []int64{}
	}
	for _, row := range rows {
		out[row.EventID] = append(out[row.EventID], row.TeamID)
	}
	return out, nil
}

func (r *EventRepository) ReplaceTeamLinks(ctx context.Context, eventID int64, teamIDs []int64) ([]int64, error) {
	return r.ReconcileTeamLinks(ctx, eventID, func([]int64) ([]int64, error) {
		return teamIDs, nil
	})
}

func (r *EventRepository) ReconcileTeamLinks(ctx context.Context, eventID int64, resolve event.ResolveFunc) ([]int64, error) {
	if resolve == nil {
		return nil, fmt.Errorf("resolve func is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx reconcile team links: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("id").
		From("events").
		Where(qb.Eq("id", eventID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build lock event query: %w", err)
	}
	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("lock event id=%d: %w", eventID, event.ErrNotFound)
		}
		return nil, fmt.Errorf("lock event id=%d: %w", eventID, err)
	}

	current, err := listTeamIDs(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	next, err := resolve(current)
	if err != nil {
		return nil, err
	}
	next = event.NormalizeIDs(next)

	deleteQuery, deleteArgs, err := qb.DeleteFrom("event_teams").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build delete event team links query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("delete event team links id=%d: %w", eventID, err)
	}

	if len(next) > 0 {
		insert := qb.InsertInto("event_teams").Columns("event_id", "team_id")
		for _, teamID := range next {
			insert.Values(eventID, teamID)
		}
		insertQuery, insertArgs, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build insert event team links query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("insert event team links id=%d: unknown team in %v: %w", eventID, next, err)
			}
			return nil, fmt.Errorf("insert event team links id=%d: %w", eventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile team links tx: %w", err)
	}
	return next, nil
}

func (r *EventRepository) selectIDs(ctx context.Context, op string, builder *qb.SelectBuilder) ([]int64, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func listTeamIDs(ctx context.Context, q sqlx.QueryerContext, eventID int64) ([]int64, error) {
	query, args, err := qb.Select("team_id").
		From("event_teams").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list event team ids query: %w", err)
	}

	ids := make([]int64, 0)
	if err := sqlx.SelectContext(ctx, q, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list event team ids id=%d: %w", eventID, err)
	}
	return ids, nil
}

func eventFromRow(row eventTableModel) event.Event {
	return event.Event{
		ID:        row.ID,
		Name:      row.Name,
		StartsAt:  row.StartsAt.UTC(),
		Location:  row.Location,
		TeamID:    int64Ptr(row.TeamID),
		CreatorID: row.CreatorID,
		CoachID:   int64Ptr(row.CoachID),
		EmailSent: row.EmailSent,
		PushSent:  row.PushSent,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
