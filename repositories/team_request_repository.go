package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/hackmate/models"
	"github.com/lib/pq"
)

var (
	ErrTeamRequestNotFound    = errors.New("team request not found")
	ErrTeamRequestDuplicate   = errors.New("pending team request already exists for this pair")
	ErrTeamRequestUserInvalid = errors.New("team request references unknown user")
)

// TeamRequestRepository определяет интерфейс для работы с запросами на тиминг.
type TeamRequestRepository interface {
	// Create создает новый запрос. Заполняет ID и CreatedAt у переданного объекта.
	Create(ctx context.Context, request *models.TeamRequest) error

	// GetByID ищет запрос по идентификатору.
	GetByID(ctx context.Context, id int) (*models.TeamRequest, error)

	// FindByPair возвращает запрос для упорядоченной пары (sender, receiver)
	// независимо от статуса, либо ErrTeamRequestNotFound.
	FindByPair(ctx context.Context, senderID, receiverID int) (*models.TeamRequest, error)

	// ListBySender возвращает запросы, отправленные пользователем, с данным статусом.
	ListBySender(ctx context.Context, senderID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error)

	// ListByReceiver возвращает запросы, адресованные пользователю, с данным статусом.
	ListByReceiver(ctx context.Context, receiverID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error)

	// UpdateStatus переписывает статус запроса.
	UpdateStatus(ctx context.Context, id int, status models.TeamRequestStatus) error
}

type postgresTeamRequestRepository struct {
	db *sql.DB
}

func NewPostgresTeamRequestRepository(db *sql.DB) TeamRequestRepository {
	return &postgresTeamRequestRepository{db: db}
}

func (r *postgresTeamRequestRepository) Create(ctx context.Context, request *models.TeamRequest) error {
	query := `
		INSERT INTO team_requests (sender_id, receiver_id, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		request.SenderID,
		request.ReceiverID,
		request.Message,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				// Частичный уникальный индекс по (sender_id, receiver_id) WHERE status = 'pending'
				// закрывает гонку "проверили-вставили" на уровне БД.
				if pqErr.Constraint == "team_requests_pending_pair_idx" {
					return ErrTeamRequestDuplicate
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "team_requests_sender_id_fkey" || pqErr.Constraint == "team_requests_receiver_id_fkey" {
					return ErrTeamRequestUserInvalid
				}
			}
		}
		return err
	}

	return nil
}

func (r *postgresTeamRequestRepository) GetByID(ctx context.Context, id int) (*models.TeamRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, message, status, created_at
		FROM team_requests
		WHERE id = $1`

	request := &models.TeamRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Message,
		&request.Status,
		&request.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamRequestNotFound
		}
		return nil, err
	}

	return request, nil
}

func (r *postgresTeamRequestRepository) FindByPair(ctx context.Context, senderID, receiverID int) (*models.TeamRequest, error) {
	// Статус намеренно не фильтруется: отправитель, получивший отказ,
	// не может отправить повторный запрос тому же получателю.
	query := `
		SELECT id, sender_id, receiver_id, message, status, created_at
		FROM team_requests
		WHERE sender_id = $1 AND receiver_id = $2
		LIMIT 1`

	request := &models.TeamRequest{}
	err := r.db.QueryRowContext(ctx, query, senderID, receiverID).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Message,
		&request.Status,
		&request.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamRequestNotFound
		}
		return nil, err
	}

	return request, nil
}

func (r *postgresTeamRequestRepository) ListBySender(ctx context.Context, senderID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, message, status, created_at
		FROM team_requests
		WHERE sender_id = $1 AND status = $2`

	return r.list(ctx, query, senderID, status)
}

func (r *postgresTeamRequestRepository) ListByReceiver(ctx context.Context, receiverID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, message, status, created_at
		FROM team_requests
		WHERE receiver_id = $1 AND status = $2`

	return r.list(ctx, query, receiverID, status)
}

func (r *postgresTeamRequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.TeamRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.TeamRequest, 0)
	for rows.Next() {
		var request models.TeamRequest
		if scanErr := rows.Scan(
			&request.ID,
			&request.SenderID,
			&request.ReceiverID,
			&request.Message,
			&request.Status,
			&request.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, &request)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *postgresTeamRequestRepository) UpdateStatus(ctx context.Context, id int, status models.TeamRequestStatus) error {
	query := `UPDATE team_requests SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	return checkAffectedRows(result, ErrTeamRequestNotFound)
}
