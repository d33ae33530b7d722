package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/hackmate/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound         = errors.New("participant record not found")
	ErrParticipantHackathonInvalid = errors.New("participant hackathon invalid")
	ErrParticipantUserInvalid      = errors.New("participant user invalid")
)

// ParticipantRepository хранит записи участия в хакатонах.
// Уникальность пары (hackathon_id, user_id) на этом уровне не проверяется:
// повторное вступление порождает вторую запись.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.HackathonParticipant) error
	ListByHackathon(ctx context.Context, hackathonID int) ([]*models.HackathonParticipant, error)
	ListByUser(ctx context.Context, userID int) ([]*models.HackathonParticipant, error)
	CountByHackathon(ctx context.Context, hackathonID int) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, participant *models.HackathonParticipant) error {
	query := `
		INSERT INTO hackathon_participants (hackathon_id, user_id)
		VALUES ($1, $2)
		RETURNING id, joined_at`

	err := r.db.QueryRowContext(ctx, query,
		participant.HackathonID,
		participant.UserID,
	).Scan(&participant.ID, &participant.JoinedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "hackathon_participants_hackathon_id_fkey":
				return ErrParticipantHackathonInvalid
			case "hackathon_participants_user_id_fkey":
				return ErrParticipantUserInvalid
			}
		}
		return err
	}

	return nil
}

func (r *postgresParticipantRepository) ListByHackathon(ctx context.Context, hackathonID int) ([]*models.HackathonParticipant, error) {
	query := `
		SELECT id, hackathon_id, user_id, joined_at
		FROM hackathon_participants
		WHERE hackathon_id = $1`

	return r.list(ctx, query, hackathonID)
}

func (r *postgresParticipantRepository) ListByUser(ctx context.Context, userID int) ([]*models.HackathonParticipant, error) {
	query := `
		SELECT id, hackathon_id, user_id, joined_at
		FROM hackathon_participants
		WHERE user_id = $1`

	return r.list(ctx, query, userID)
}

func (r *postgresParticipantRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.HackathonParticipant, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.HackathonParticipant, 0)
	for rows.Next() {
		var participant models.HackathonParticipant
		if scanErr := rows.Scan(
			&participant.ID,
			&participant.HackathonID,
			&participant.UserID,
			&participant.JoinedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, &participant)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *postgresParticipantRepository) CountByHackathon(ctx context.Context, hackathonID int) (int, error) {
	query := `SELECT COUNT(*) FROM hackathon_participants WHERE hackathon_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, hackathonID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
