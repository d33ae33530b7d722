package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/realtime"
	"github.com/Dosada05/hackmate/repositories"
	"github.com/Dosada05/hackmate/storage"
)

type CreateHackathonInput struct {
	Title       string    `json:"title"`
	Organizer   string    `json:"organizer"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	IsOnline    bool      `json:"is_online"`
	URL         *string   `json:"url"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TeamsNeeded bool      `json:"teams_needed"`
}

type HackathonService interface {
	// Create добавляет хакатон в каталог. Запись создается неодобренной
	// и не видна в публичной выдаче до решения администратора.
	Create(ctx context.Context, input CreateHackathonInput, createdBy int) (*models.Hackathon, error)

	// List возвращает одобренные хакатоны по фильтру.
	List(ctx context.Context, filter models.HackathonFilter) ([]*models.Hackathon, error)

	// GetByID возвращает хакатон с числом участников и профилем создателя.
	GetByID(ctx context.Context, id int) (*models.Hackathon, error)

	// Join записывает пользователя участником хакатона.
	Join(ctx context.Context, hackathonID, userID int) (*models.HackathonParticipant, error)

	// ListPending возвращает заявки, ожидающие решения, с профилями создателей.
	ListPending(ctx context.Context) ([]*models.Hackathon, error)

	// Approve выставляет флаг одобрения: хакатон появляется в публичной выдаче.
	Approve(ctx context.Context, id int) error

	// Reject удаляет заявку безвозвратно.
	Reject(ctx context.Context, id int) error

	// UploadLogo загружает логотип в объектное хранилище и запоминает ключ.
	UploadLogo(ctx context.Context, hackathonID, currentUserID int, isAdmin bool, contentType string, file io.Reader) (*models.Hackathon, error)
}

type hackathonService struct {
	hackathonRepo   repositories.HackathonRepository
	participantRepo repositories.ParticipantRepository
	profileRepo     repositories.ProfileRepository
	uploader        storage.FileUploader
	hub             *realtime.Hub
	logger          *slog.Logger
}

func NewHackathonService(
	hackathonRepo repositories.HackathonRepository,
	participantRepo repositories.ParticipantRepository,
	profileRepo repositories.ProfileRepository,
	uploader storage.FileUploader,
	hub *realtime.Hub,
	logger *slog.Logger,
) HackathonService {
	return &hackathonService{
		hackathonRepo:   hackathonRepo,
		participantRepo: participantRepo,
		profileRepo:     profileRepo,
		uploader:        uploader,
		hub:             hub,
		logger:          logger,
	}
}

func (s *hackathonService) Create(ctx context.Context, input CreateHackathonInput, createdBy int) (*models.Hackathon, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrHackathonTitleRequired
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrHackathonInvalidDates
	}

	hackathon := &models.Hackathon{
		Title:       strings.TrimSpace(input.Title),
		Organizer:   strings.TrimSpace(input.Organizer),
		Description: input.Description,
		Location:    input.Location,
		IsOnline:    input.IsOnline,
		URL:         input.URL,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		TeamsNeeded: input.TeamsNeeded,
		IsApproved:  false,
		CreatedBy:   createdBy,
	}

	if err := s.hackathonRepo.Create(ctx, hackathon); err != nil {
		if errors.Is(err, repositories.ErrHackathonCreatorInvalid) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}

	s.notifyPendingChanged("created", hackathon.ID)

	return hackathon, nil
}

func (s *hackathonService) List(ctx context.Context, filter models.HackathonFilter) ([]*models.Hackathon, error) {
	hackathons, err := s.hackathonRepo.ListApproved(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	for _, hackathon := range hackathons {
		s.resolveLogoURL(hackathon)
	}
	return hackathons, nil
}

func (s *hackathonService) GetByID(ctx context.Context, id int) (*models.Hackathon, error) {
	hackathon, err := s.hackathonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", id, err)
	}

	count, err := s.participantRepo.CountByHackathon(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants of hackathon %d: %w", id, err)
	}
	hackathon.ParticipantsCount = count

	if creator, err := s.profileRepo.GetByID(ctx, hackathon.CreatedBy); err == nil {
		resolveAvatarURL(creator, s.uploader)
		hackathon.Creator = creator
	}

	s.resolveLogoURL(hackathon)

	return hackathon, nil
}

func (s *hackathonService) Join(ctx context.Context, hackathonID, userID int) (*models.HackathonParticipant, error) {
	if _, err := s.hackathonRepo.GetByID(ctx, hackathonID); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", hackathonID, err)
	}

	participant := &models.HackathonParticipant{
		HackathonID: hackathonID,
		UserID:      userID,
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantHackathonInvalid) {
			return nil, ErrHackathonNotFound
		}
		if errors.Is(err, repositories.ErrParticipantUserInvalid) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to join hackathon %d: %w", hackathonID, err)
	}

	return participant, nil
}

func (s *hackathonService) ListPending(ctx context.Context) ([]*models.Hackathon, error) {
	hackathons, err := s.hackathonRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending hackathons: %w", err)
	}

	// Профили создателей подгружаются одним пакетным запросом.
	idSet := make(map[int]struct{})
	for _, hackathon := range hackathons {
		idSet[hackathon.CreatedBy] = struct{}{}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	profiles, err := s.profileRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator profiles: %w", err)
	}
	byID := make(map[int]*models.Profile, len(profiles))
	for _, profile := range profiles {
		resolveAvatarURL(profile, s.uploader)
		byID[profile.ID] = profile
	}

	for _, hackathon := range hackathons {
		hackathon.Creator = byID[hackathon.CreatedBy]
		s.resolveLogoURL(hackathon)
	}

	return hackathons, nil
}

func (s *hackathonService) Approve(ctx context.Context, id int) error {
	if err := s.hackathonRepo.SetApproved(ctx, id, true); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return ErrHackathonNotFound
		}
		return fmt.Errorf("failed to approve hackathon %d: %w", id, err)
	}

	s.notifyPendingChanged("approved", id)
	return nil
}

func (s *hackathonService) Reject(ctx context.Context, id int) error {
	if err := s.hackathonRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return ErrHackathonNotFound
		}
		return fmt.Errorf("failed to reject hackathon %d: %w", id, err)
	}

	s.notifyPendingChanged("rejected", id)
	return nil
}

func (s *hackathonService) UploadLogo(ctx context.Context, hackathonID, currentUserID int, isAdmin bool, contentType string, file io.Reader) (*models.Hackathon, error) {
	hackathon, err := s.hackathonRepo.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", hackathonID, err)
	}

	if hackathon.CreatedBy != currentUserID && !isAdmin {
		return nil, ErrForbiddenOperation
	}

	key := fmt.Sprintf("hackathons/%d/logo", hackathonID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload hackathon logo: %w", err)
	}

	hackathon.LogoKey = &result.Key
	if err := s.hackathonRepo.Update(ctx, hackathon); err != nil {
		return nil, fmt.Errorf("failed to save hackathon logo key: %w", err)
	}

	s.resolveLogoURL(hackathon)
	return hackathon, nil
}

// notifyPendingChanged толкает событие в комнату админского обзора заявок.
// Клиенты в ответ перезапрашивают полный список.
func (s *hackathonService) notifyPendingChanged(action string, hackathonID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(realtime.PendingHackathonsRoom, realtime.Event{
		Type: realtime.EventPendingHackathonsChanged,
		Payload: map[string]interface{}{
			"action":       action,
			"hackathon_id": hackathonID,
		},
	})
}

func (s *hackathonService) resolveLogoURL(hackathon *models.Hackathon) {
	if hackathon.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*hackathon.LogoKey)
	hackathon.LogoURL = &url
}
