package models

import "time"

// Hackathon представляет событие в каталоге. Публично видны только записи
// с IsApproved == true; остальные ждут решения администратора.
type Hackathon struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Organizer   string    `json:"organizer" db:"organizer"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    *string   `json:"location,omitempty" db:"location"`
	IsOnline    bool      `json:"is_online" db:"is_online"`
	URL         *string   `json:"url,omitempty" db:"url"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	TeamsNeeded bool      `json:"teams_needed" db:"teams_needed"`
	IsApproved  bool      `json:"is_approved" db:"is_approved"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные данные (не мапятся напрямую)
	Creator           *Profile `json:"creator,omitempty" db:"-"`
	ParticipantsCount int      `json:"participants_count" db:"-"`
}

// HackathonFilter задает параметры выборки публичного каталога.
type HackathonFilter struct {
	Search          string // подстрока по title или organizer
	Location        string
	Organizer       string
	OnlineOnly      bool
	OnlyTeamsNeeded bool
}
