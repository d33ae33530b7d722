package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/oauth"
	"github.com/Dosada05/hackmate/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, input models.Credentials) (*models.Profile, error)

	// LoginWithGithub создает профиль при первом входе через GitHub
	// и обновляет данные из GitHub при последующих.
	LoginWithGithub(ctx context.Context, ghUser *oauth.GitHubUser) (*models.Profile, error)
}

type authService struct {
	profileRepo repositories.ProfileRepository

	// Адреса, получающие роль администратора при входе. Задаются
	// конфигурацией, а не константой в коде.
	adminEmails map[string]struct{}
}

func NewAuthService(profileRepo repositories.ProfileRepository, adminEmails []string) AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &authService{
		profileRepo: profileRepo,
		adminEmails: admins,
	}
}

func (s *authService) roleFor(email string) models.UserRole {
	if _, ok := s.adminEmails[strings.ToLower(email)]; ok {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash := string(hashedPassword)

	profile := &models.Profile{
		Username:     strings.TrimSpace(input.Username),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        &email,
		PasswordHash: &hash,
		Skills:       []string{},
		Role:         s.roleFor(email),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repositories.ErrProfileUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

func (s *authService) Login(ctx context.Context, input models.Credentials) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	// Профили, созданные через OAuth, пароля не имеют.
	if profile.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	profile.PasswordHash = nil

	return profile, nil
}

func (s *authService) LoginWithGithub(ctx context.Context, ghUser *oauth.GitHubUser) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByGithubID(ctx, ghUser.ID)
	if err == nil {
		return s.refreshFromGithub(ctx, profile, ghUser)
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to find profile by github id: %w", err)
	}

	githubID := ghUser.ID
	githubURL := ghUser.HTMLURL

	profile = &models.Profile{
		Username:  ghUser.Login,
		FullName:  ghUser.Name,
		GithubID:  &githubID,
		GithubURL: &githubURL,
		Skills:    []string{},
		Role:      models.RoleUser,
	}
	if ghUser.Email != "" {
		email := strings.ToLower(ghUser.Email)
		profile.Email = &email
		profile.Role = s.roleFor(email)
	}
	if ghUser.AvatarURL != "" {
		avatar := ghUser.AvatarURL
		profile.AvatarURL = &avatar
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Логин мог быть занят парольной учеткой; дополняем суффиксом
		// числового ID GitHub и пробуем еще раз.
		if errors.Is(err, repositories.ErrProfileUsernameConflict) {
			profile.Username = ghUser.Login + "-" + strconv.FormatInt(ghUser.ID, 10)
			if retryErr := s.profileRepo.Create(ctx, profile); retryErr != nil {
				return nil, fmt.Errorf("failed to create github profile: %w", retryErr)
			}
			return profile, nil
		}
		return nil, fmt.Errorf("failed to create github profile: %w", err)
	}

	return profile, nil
}

func (s *authService) refreshFromGithub(ctx context.Context, profile *models.Profile, ghUser *oauth.GitHubUser) (*models.Profile, error) {
	changed := false

	if ghUser.HTMLURL != "" && (profile.GithubURL == nil || *profile.GithubURL != ghUser.HTMLURL) {
		url := ghUser.HTMLURL
		profile.GithubURL = &url
		changed = true
	}
	if profile.Email == nil && ghUser.Email != "" {
		email := strings.ToLower(ghUser.Email)
		profile.Email = &email
		if role := s.roleFor(email); role != profile.Role {
			profile.Role = role
		}
		changed = true
	}

	if changed {
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to refresh github profile: %w", err)
		}
	}

	return profile, nil
}
