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
	ErrProfileNotFound         = errors.New("profile not found")
	ErrProfileEmailConflict    = errors.New("profile email conflict")
	ErrProfileUsernameConflict = errors.New("profile username conflict")
	ErrProfileGithubConflict   = errors.New("profile github id conflict")
)

const profileColumns = `id, username, full_name, email, password_hash, github_id, github_url, bio, location, website, skills, role, avatar_key, created_at, updated_at`

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByGithubID(ctx context.Context, githubID int64) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error

	// ListByIDs возвращает профили с перечисленными идентификаторами одним
	// запросом. Используется для пакетной подгрузки контрагентов запросов.
	ListByIDs(ctx context.Context, ids []int) ([]*models.Profile, error)

	// Search возвращает профили каталога разработчиков по фильтру.
	Search(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (username, full_name, email, password_hash, github_id, github_url, bio, location, website, skills, role, avatar_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.Username,
		profile.FullName,
		profile.Email,
		profile.PasswordHash,
		profile.GithubID,
		profile.GithubURL,
		profile.Bio,
		profile.Location,
		profile.Website,
		pq.Array(profile.Skills),
		profile.Role,
		profile.AvatarKey,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return mapProfileConstraintError(err)
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	return r.getOne(ctx, query, id)
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1`, profileColumns)
	return r.getOne(ctx, query, email)
}

func (r *postgresProfileRepository) GetByGithubID(ctx context.Context, githubID int64) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE github_id = $1`, profileColumns)
	return r.getOne(ctx, query, githubID)
}

func (r *postgresProfileRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Profile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET username = $1, full_name = $2, email = $3, password_hash = $4,
			github_url = $5, bio = $6, location = $7, website = $8,
			skills = $9, role = $10, avatar_key = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.Username,
		profile.FullName,
		profile.Email,
		profile.PasswordHash,
		profile.GithubURL,
		profile.Bio,
		profile.Location,
		profile.Website,
		pq.Array(profile.Skills),
		profile.Role,
		profile.AvatarKey,
		profile.ID,
	).Scan(&profile.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return mapProfileConstraintError(err)
	}
	return nil
}

func (r *postgresProfileRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = ANY($1)`, profileColumns)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (r *postgresProfileRepository) Search(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf("(username ILIKE %s OR full_name ILIKE %s)", placeholder, placeholder))
	}
	if len(filter.Skills) > 0 {
		args = append(args, pq.Array(filter.Skills))
		conditions = append(conditions, fmt.Sprintf("skills @> $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM profiles`, profileColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.FullName,
		&profile.Email,
		&profile.PasswordHash,
		&profile.GithubID,
		&profile.GithubURL,
		&profile.Bio,
		&profile.Location,
		&profile.Website,
		pq.Array(&profile.Skills),
		&profile.Role,
		&profile.AvatarKey,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func collectProfiles(rows *sql.Rows) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func mapProfileConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "profiles_email_key":
			return ErrProfileEmailConflict
		case "profiles_username_key":
			return ErrProfileUsernameConflict
		case "profiles_github_id_key":
			return ErrProfileGithubConflict
		}
	}
	return err
}
