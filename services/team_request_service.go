package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/repositories"
	"github.com/Dosada05/hackmate/storage"
	"golang.org/x/sync/errgroup"
)

// RequestBoard — три непересекающиеся коллекции запросов пользователя.
// Teammates — это проекция принятых запросов, отдельной сущности нет.
type RequestBoard struct {
	Incoming  []*models.TeamRequest `json:"incoming"`
	Sent      []*models.TeamRequest `json:"sent"`
	Teammates []*models.TeamRequest `json:"teammates"`
}

type TeamRequestService interface {
	// SubmitRequest создает запрос от senderID к receiverID со статусом pending.
	// Если для этой пары уже есть запрос с любым статусом, возвращает
	// ErrRequestAlreadySent.
	SubmitRequest(ctx context.Context, senderID, receiverID int, message string) (*models.TeamRequest, error)

	// ListRequests возвращает входящие, отправленные и принятые запросы
	// пользователя с подгруженными профилями контрагентов.
	ListRequests(ctx context.Context, userID int) (*RequestBoard, error)

	// Respond переводит запрос из pending в accepted или rejected.
	// Отвечать может только получатель запроса.
	Respond(ctx context.Context, requestID, currentUserID int, decision models.RequestDecision) (*models.TeamRequest, error)
}

type teamRequestService struct {
	requestRepo repositories.TeamRequestRepository
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
	email       *EmailService
	logger      *slog.Logger
}

func NewTeamRequestService(
	requestRepo repositories.TeamRequestRepository,
	profileRepo repositories.ProfileRepository,
	uploader storage.FileUploader,
	email *EmailService,
	logger *slog.Logger,
) TeamRequestService {
	return &teamRequestService{
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		uploader:    uploader,
		email:       email,
		logger:      logger,
	}
}

func (s *teamRequestService) SubmitRequest(ctx context.Context, senderID, receiverID int, message string) (*models.TeamRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequestForbidden
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrRequestMessageRequired
	}

	receiver, err := s.profileRepo.GetByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get receiver %d: %w", receiverID, err)
	}

	// Проверяем пару независимо от статуса: отправитель, получивший отказ,
	// не может отправить повторный запрос тому же получателю.
	_, err = s.requestRepo.FindByPair(ctx, senderID, receiverID)
	if err == nil {
		return nil, ErrRequestAlreadySent
	}
	if !errors.Is(err, repositories.ErrTeamRequestNotFound) {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}

	request := &models.TeamRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     models.RequestPending,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		// Две конкурентные отправки могут обе пройти проверку выше;
		// частичный уникальный индекс в БД ловит проигравшего здесь.
		if errors.Is(err, repositories.ErrTeamRequestDuplicate) {
			return nil, ErrRequestAlreadySent
		}
		if errors.Is(err, repositories.ErrTeamRequestUserInvalid) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to create team request: %w", err)
	}

	s.notifyReceiver(ctx, request, receiver)

	return request, nil
}

// notifyReceiver отправляет письмо получателю запроса. Сбой доставки не
// влияет на результат операции, только логируется.
func (s *teamRequestService) notifyReceiver(ctx context.Context, request *models.TeamRequest, receiver *models.Profile) {
	if s.email == nil || receiver.Email == nil {
		return
	}

	sender, err := s.profileRepo.GetByID(ctx, request.SenderID)
	if err != nil {
		s.logger.Warn("failed to load sender profile for notification",
			slog.Int("request_id", request.ID), slog.Any("error", err))
		return
	}

	if err := s.email.SendTeamRequestEmail(*receiver.Email, displayName(sender), request.Message); err != nil {
		s.logger.Warn("failed to send team request notification",
			slog.Int("request_id", request.ID), slog.Any("error", err))
	}
}

func (s *teamRequestService) ListRequests(ctx context.Context, userID int) (*RequestBoard, error) {
	var (
		incoming     []*models.TeamRequest
		sent         []*models.TeamRequest
		acceptedIn   []*models.TeamRequest
		acceptedSent []*models.TeamRequest
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		incoming, err = s.requestRepo.ListByReceiver(gCtx, userID, models.RequestPending)
		return err
	})
	g.Go(func() error {
		var err error
		sent, err = s.requestRepo.ListBySender(gCtx, userID, models.RequestPending)
		return err
	})
	g.Go(func() error {
		var err error
		acceptedIn, err = s.requestRepo.ListByReceiver(gCtx, userID, models.RequestAccepted)
		return err
	})
	g.Go(func() error {
		var err error
		acceptedSent, err = s.requestRepo.ListBySender(gCtx, userID, models.RequestAccepted)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list team requests: %w", err)
	}

	board := &RequestBoard{
		Incoming:  incoming,
		Sent:      sent,
		Teammates: append(append(make([]*models.TeamRequest, 0, len(acceptedIn)+len(acceptedSent)), acceptedIn...), acceptedSent...),
	}

	if err := s.attachCounterparts(ctx, board, userID); err != nil {
		return nil, err
	}

	return board, nil
}

// attachCounterparts подгружает профили вторых сторон одним пакетным
// запросом по множеству их идентификаторов, вместо запроса на строку.
func (s *teamRequestService) attachCounterparts(ctx context.Context, board *RequestBoard, userID int) error {
	idSet := make(map[int]struct{})
	collect := func(requests []*models.TeamRequest) {
		for _, request := range requests {
			idSet[request.CounterpartID(userID)] = struct{}{}
		}
	}
	collect(board.Incoming)
	collect(board.Sent)
	collect(board.Teammates)

	if len(idSet) == 0 {
		return nil
	}

	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	profiles, err := s.profileRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to batch load counterpart profiles: %w", err)
	}

	byID := make(map[int]*models.Profile, len(profiles))
	for _, profile := range profiles {
		resolveAvatarURL(profile, s.uploader)
		byID[profile.ID] = profile
	}

	attach := func(requests []*models.TeamRequest) {
		for _, request := range requests {
			if profile, ok := byID[request.SenderID]; ok && request.SenderID != userID {
				request.Sender = profile
			}
			if profile, ok := byID[request.ReceiverID]; ok && request.ReceiverID != userID {
				request.Receiver = profile
			}
		}
	}
	attach(board.Incoming)
	attach(board.Sent)
	attach(board.Teammates)

	return nil
}

func (s *teamRequestService) Respond(ctx context.Context, requestID, currentUserID int, decision models.RequestDecision) (*models.TeamRequest, error) {
	status, ok := decision.Status()
	if !ok {
		return nil, ErrInvalidDecision
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request %d: %w", requestID, err)
	}

	if request.ReceiverID != currentUserID {
		return nil, ErrNotRequestReceiver
	}

	// Повторный ответ не блокируется: статус просто переписывается.
	if err := s.requestRepo.UpdateStatus(ctx, requestID, status); err != nil {
		if errors.Is(err, repositories.ErrTeamRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to update request %d status: %w", requestID, err)
	}

	request.Status = status
	return request, nil
}

func displayName(profile *models.Profile) string {
	if profile.FullName != "" {
		return profile.FullName
	}
	if profile.Username != "" {
		return profile.Username
	}
	return "A developer"
}

func resolveAvatarURL(profile *models.Profile, uploader storage.FileUploader) {
	if profile.AvatarKey == nil || uploader == nil {
		return
	}
	url := uploader.GetPublicURL(*profile.AvatarKey)
	profile.AvatarURL = &url
}
