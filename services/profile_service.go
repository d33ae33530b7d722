package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/repositories"
	"github.com/Dosada05/hackmate/storage"
)

type UpdateProfileInput struct {
	Username *string   `json:"username"`
	FullName *string   `json:"full_name"`
	Bio      *string   `json:"bio"`
	Location *string   `json:"location"`
	Website  *string   `json:"website"`
	Skills   *[]string `json:"skills"`
}

type ProfileService interface {
	GetByID(ctx context.Context, id int) (*models.Profile, error)

	// Update меняет собственный профиль пользователя. Передаются только
	// заполненные поля, остальные не трогаются.
	Update(ctx context.Context, profileID, currentUserID int, input UpdateProfileInput) (*models.Profile, error)

	// Search возвращает каталог разработчиков по фильтру.
	Search(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error)

	// UploadAvatar загружает аватар в объектное хранилище и запоминает ключ.
	UploadAvatar(ctx context.Context, profileID, currentUserID int, contentType string, file io.Reader) (*models.Profile, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
}

func NewProfileService(profileRepo repositories.ProfileRepository, uploader storage.FileUploader) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		uploader:    uploader,
	}
}

func (s *profileService) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile %d: %w", id, err)
	}

	resolveAvatarURL(profile, s.uploader)
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, profileID, currentUserID int, input UpdateProfileInput) (*models.Profile, error) {
	if profileID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile %d: %w", profileID, err)
	}

	if input.Username != nil {
		profile.Username = strings.TrimSpace(*input.Username)
	}
	if input.FullName != nil {
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}
	if input.Location != nil {
		profile.Location = input.Location
	}
	if input.Website != nil {
		profile.Website = input.Website
	}
	if input.Skills != nil {
		profile.Skills = *input.Skills
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repositories.ErrProfileEmailConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile %d: %w", profileID, err)
	}

	resolveAvatarURL(profile, s.uploader)
	return profile, nil
}

func (s *profileService) Search(ctx context.Context, filter models.ProfileFilter) ([]*models.Profile, error) {
	profiles, err := s.profileRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	for _, profile := range profiles {
		resolveAvatarURL(profile, s.uploader)
	}
	return profiles, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, profileID, currentUserID int, contentType string, file io.Reader) (*models.Profile, error) {
	if profileID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile %d: %w", profileID, err)
	}

	key := fmt.Sprintf("avatars/%d", profileID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	profile.AvatarKey = &result.Key
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	resolveAvatarURL(profile, s.uploader)
	return profile, nil
}
