package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/hackmate/models"
	"github.com/lib/pq"
)

var (
	ErrHackathonNotFound       = errors.New("hackathon not found")
	ErrHackathonCreatorInvalid = errors.New("hackathon creator invalid")
)

const hackathonColumns = `id, title, organizer, description, location, is_online, url, start_date, end_date, teams_needed, is_approved, created_by, logo_key, created_at, updated_at`

type HackathonRepository interface {
	// Create создает хакатон. Заполняет ID, CreatedAt и UpdatedAt у переданного объекта.
	Create(ctx context.Context, hackathon *models.Hackathon) error

	GetByID(ctx context.Context, id int) (*models.Hackathon, error)

	// ListApproved возвращает одобренные хакатоны по фильтру,
	// отсортированные по дате начала.
	ListApproved(ctx context.Context, filter models.HackathonFilter) ([]*models.Hackathon, error)

	// ListPending возвращает неодобренные хакатоны, сначала самые новые.
	ListPending(ctx context.Context) ([]*models.Hackathon, error)

	// SetApproved выставляет флаг одобрения.
	SetApproved(ctx context.Context, id int, approved bool) error

	Update(ctx context.Context, hackathon *models.Hackathon) error

	// Delete удаляет хакатон безвозвратно. Используется отклонением заявки:
	// архива отклоненных записей нет.
	Delete(ctx context.Context, id int) error
}

type postgresHackathonRepository struct {
	db *sql.DB
}

func NewPostgresHackathonRepository(db *sql.DB) HackathonRepository {
	return &postgresHackathonRepository{db: db}
}

func (r *postgresHackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon) error {
	query := `
		INSERT INTO hackathons (title, organizer, description, location, is_online, url, start_date, end_date, teams_needed, is_approved, created_by, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		hackathon.Title,
		hackathon.Organizer,
		hackathon.Description,
		hackathon.Location,
		hackathon.IsOnline,
		hackathon.URL,
		hackathon.StartDate,
		hackathon.EndDate,
		hackathon.TeamsNeeded,
		hackathon.IsApproved,
		hackathon.CreatedBy,
		hackathon.LogoKey,
	).Scan(&hackathon.ID, &hackathon.CreatedAt, &hackathon.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			if pqErr.Constraint == "hackathons_created_by_fkey" {
				return ErrHackathonCreatorInvalid
			}
		}
		return err
	}

	return nil
}

func (r *postgresHackathonRepository) GetByID(ctx context.Context, id int) (*models.Hackathon, error) {
	query := fmt.Sprintf(`SELECT %s FROM hackathons WHERE id = $1`, hackathonColumns)

	hackathon, err := scanHackathon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHackathonNotFound
		}
		return nil, err
	}
	return hackathon, nil
}

func (r *postgresHackathonRepository) ListApproved(ctx context.Context, filter models.HackathonFilter) ([]*models.Hackathon, error) {
	conditions := []string{"is_approved = TRUE"}
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR organizer ILIKE %s)", placeholder, placeholder))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		conditions = append(conditions, fmt.Sprintf("location = $%d", len(args)))
	}
	if filter.Organizer != "" {
		args = append(args, filter.Organizer)
		conditions = append(conditions, fmt.Sprintf("organizer = $%d", len(args)))
	}
	if filter.OnlineOnly {
		conditions = append(conditions, "is_online = TRUE")
	}
	if filter.OnlyTeamsNeeded {
		conditions = append(conditions, "teams_needed = TRUE")
	}

	query := fmt.Sprintf(`SELECT %s FROM hackathons WHERE %s ORDER BY start_date ASC`,
		hackathonColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHackathons(rows)
}

func (r *postgresHackathonRepository) ListPending(ctx context.Context) ([]*models.Hackathon, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM hackathons
		WHERE is_approved = FALSE
		ORDER BY created_at DESC`, hackathonColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHackathons(rows)
}

func (r *postgresHackathonRepository) SetApproved(ctx context.Context, id int, approved bool) error {
	query := `UPDATE hackathons SET is_approved = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, approved, id)
	if err != nil {
		return err
	}

	return checkAffectedRows(result, ErrHackathonNotFound)
}

func (r *postgresHackathonRepository) Update(ctx context.Context, hackathon *models.Hackathon) error {
	query := `
		UPDATE hackathons
		SET title = $1, organizer = $2, description = $3, location = $4,
			is_online = $5, url = $6, start_date = $7, end_date = $8,
			teams_needed = $9, logo_key = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		hackathon.Title,
		hackathon.Organizer,
		hackathon.Description,
		hackathon.Location,
		hackathon.IsOnline,
		hackathon.URL,
		hackathon.StartDate,
		hackathon.EndDate,
		hackathon.TeamsNeeded,
		hackathon.LogoKey,
		hackathon.ID,
	).Scan(&hackathon.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHackathonNotFound
		}
		return err
	}
	return nil
}

func (r *postgresHackathonRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM hackathons WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return checkAffectedRows(result, ErrHackathonNotFound)
}

func scanHackathon(row rowScanner) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	err := row.Scan(
		&hackathon.ID,
		&hackathon.Title,
		&hackathon.Organizer,
		&hackathon.Description,
		&hackathon.Location,
		&hackathon.IsOnline,
		&hackathon.URL,
		&hackathon.StartDate,
		&hackathon.EndDate,
		&hackathon.TeamsNeeded,
		&hackathon.IsApproved,
		&hackathon.CreatedBy,
		&hackathon.LogoKey,
		&hackathon.CreatedAt,
		&hackathon.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hackathon, nil
}

func collectHackathons(rows *sql.Rows) ([]*models.Hackathon, error) {
	hackathons := make([]*models.Hackathon, 0)
	for rows.Next() {
		hackathon, err := scanHackathon(rows)
		if err != nil {
			return nil, err
		}
		hackathons = append(hackathons, hackathon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hackathons, nil
}
