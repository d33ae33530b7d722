package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type Profile struct {
	ID           int      `json:"id" db:"id"`
	Username     string   `json:"username" db:"username"`
	FullName     string   `json:"full_name" db:"full_name"`
	Email        *string  `json:"email,omitempty" db:"email"`
	PasswordHash *string  `json:"-" db:"password_hash"`
	GithubID     *int64   `json:"-" db:"github_id"`
	GithubURL    *string  `json:"github_url,omitempty" db:"github_url"`
	Bio          *string  `json:"bio,omitempty" db:"bio"`
	Location     *string  `json:"location,omitempty" db:"location"`
	Website      *string  `json:"website,omitempty" db:"website"`
	Skills       []string `json:"skills" db:"skills"`
	Role         UserRole `json:"role" db:"role"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileFilter задает параметры поиска по каталогу разработчиков.
type ProfileFilter struct {
	Search string   // подстрока по username или full_name
	Skills []string // профиль должен содержать все перечисленные навыки
}
