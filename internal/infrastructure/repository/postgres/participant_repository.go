package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

var participantColumns = []string{
	"id",
	"event_id",
	"user_id",
	"athlete_id",
	"status",
	"invited_at",
	"responded_at",
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID int64) ([]participant.Participant, error) {
	query, args, err := qb.Select(participantColumns...).
		From("event_participants").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participants event id=%d: %w", eventID, err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) ListAthleteIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return r.selectIDs(ctx, "list participant athlete ids",
		qb.Select("DISTINCT athlete_id").
			From("event_participants").
			Where(qb.Eq("event_id", eventID), qb.IsNotNull("athlete_id")).
			OrderBy("athlete_id"))
}

func (r *ParticipantRepository) ListUserIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return r.selectIDs(ctx, "list participant user ids",
		qb.Select("DISTINCT user_id").
			From("event_participants").
			Where(qb.Eq("event_id", eventID), qb.IsNotNull("user_id")).
			OrderBy("user_id"))
}

func (r *ParticipantRepository) ListEventIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return r.selectIDs(ctx, "list participant event ids",
		qb.Select("DISTINCT event_id").
			From("event_participants").
			Where(qb.Eq("user_id", userID)).
			OrderBy("event_id"))
}

func (r *ParticipantRepository) FindByUser(ctx context.Context, eventID, userID int64) (participant.Participant, bool, error) {
	return r.findOne(ctx, "find participant by user",
		qb.Eq("event_id", eventID),
		qb.Eq("user_id", userID),
	)
}

func (r *ParticipantRepository) FindByAthleteWithoutUser(ctx context.Context, eventID, athleteID int64) (participant.Participant, bool, error) {
	return r.findOne(ctx, "find participant by athlete",
		qb.Eq("event_id", eventID),
		qb.Eq("athlete_id", athleteID),
		qb.IsNull("user_id"),
	)
}

func (r *ParticipantRepository) Create(ctx context.Context, p participant.Participant) (participant.Participant, error) {
	query, args, err := qb.InsertModel("event_participants", participantInsert(p), "RETURNING "+joinColumns(participantColumns))
	if err != nil {
		return participant.Participant{}, fmt.Errorf("build insert participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return participant.Participant{}, fmt.Errorf("insert participant event id=%d: %w", p.EventID, participant.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return participant.Participant{}, fmt.Errorf("insert participant event id=%d: %w", p.EventID, participant.ErrUnknownReference)
		}
		return participant.Participant{}, fmt.Errorf("insert participant event id=%d: %w", p.EventID, err)
	}
	return participantFromRow(row), nil
}

// CreateMany relies on ON CONFLICT DO NOTHING so rows that collide with the
// unique indexes are skipped; RETURNING yields only the inserted ones.
func (r *ParticipantRepository) CreateMany(ctx context.Context, rows []participant.Participant) ([]participant.Participant, error) {
	if len(rows) == 0 {
		return []participant.Participant{}, nil
	}

	insert := qb.InsertInto("event_participants").
		Columns("event_id", "user_id", "athlete_id", "status", "invited_at", "responded_at")
	for _, p := range rows {
		m := participantInsert(p)
		insert.Values(m.EventID, m.UserID, m.AthleteID, m.Status, m.InvitedAt, m.RespondedAt)
	}
	query, args, err := insert.
		Suffix("ON CONFLICT DO NOTHING RETURNING " + joinColumns(participantColumns)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build insert participants query: %w", err)
	}

	var inserted []participantTableModel
	if err := r.db.SelectContext(ctx, &inserted, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("insert participants: %w", participant.ErrUnknownReference)
		}
		return nil, fmt.Errorf("insert participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(inserted))
	for _, row := range inserted {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateResponse(ctx context.Context, p participant.Participant) error {
	query, args, err := qb.Update("event_participants").
		Set("status", string(p.Status)).
		Set("responded_at", p.RespondedAt).
		Where(qb.Eq("id", p.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update participant response query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update participant response id=%d: %w", p.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update participant response: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update participant response id=%d: not found", p.ID)
	}
	return nil
}

func (r *ParticipantRepository) findOne(ctx context.Context, op string, conditions ...qb.Condition) (participant.Participant, bool, error) {
	query, args, err := qb.Select(participantColumns...).
		From("event_participants").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) selectIDs(ctx context.Context, op string, builder *qb.SelectBuilder) ([]int64, error) {
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

func participantInsert(p participant.Participant) participantInsertModel {
	return participantInsertModel{
		EventID:     p.EventID,
		UserID:      nullInt64(p.UserID),
		AthleteID:   nullInt64(p.AthleteID),
		Status:      string(p.Status),
		InvitedAt:   p.InvitedAt.UTC(),
		RespondedAt: p.RespondedAt,
	}
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:          row.ID,
		EventID:     row.EventID,
		UserID:      int64Ptr(row.UserID),
		AthleteID:   int64Ptr(row.AthleteID),
		Status:      participant.Status(row.Status),
		InvitedAt:   row.InvitedAt.UTC(),
		RespondedAt: row.RespondedAt,
	}
}
