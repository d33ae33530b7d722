package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTeamRequestRepo — потокобезопасная in-memory реализация для тестов
// сервиса. Частичный уникальный индекс БД эмулируется в Create.
type fakeTeamRequestRepo struct {
	mu       sync.Mutex
	nextID   int
	requests map[int]*models.TeamRequest

	enforcePendingPairIndex bool
}

func newFakeTeamRequestRepo() *fakeTeamRequestRepo {
	return &fakeTeamRequestRepo{
		nextID:                  1,
		requests:                make(map[int]*models.TeamRequest),
		enforcePendingPairIndex: true,
	}
}

func (f *fakeTeamRequestRepo) Create(_ context.Context, request *models.TeamRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.enforcePendingPairIndex {
		for _, existing := range f.requests {
			if existing.SenderID == request.SenderID &&
				existing.ReceiverID == request.ReceiverID &&
				existing.Status == models.RequestPending {
				return repositories.ErrTeamRequestDuplicate
			}
		}
	}

	stored := *request
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.nextID++
	f.requests[stored.ID] = &stored

	request.ID = stored.ID
	request.CreatedAt = stored.CreatedAt
	return nil
}

func (f *fakeTeamRequestRepo) GetByID(_ context.Context, id int) (*models.TeamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return nil, repositories.ErrTeamRequestNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeTeamRequestRepo) FindByPair(_ context.Context, senderID, receiverID int) (*models.TeamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, request := range f.requests {
		if request.SenderID == senderID && request.ReceiverID == receiverID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, repositories.ErrTeamRequestNotFound
}

func (f *fakeTeamRequestRepo) ListBySender(_ context.Context, senderID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*models.TeamRequest, 0)
	for _, request := range f.requests {
		if request.SenderID == senderID && request.Status == status {
			copied := *request
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeTeamRequestRepo) ListByReceiver(_ context.Context, receiverID int, status models.TeamRequestStatus) ([]*models.TeamRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*models.TeamRequest, 0)
	for _, request := range f.requests {
		if request.ReceiverID == receiverID && request.Status == status {
			copied := *request
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeTeamRequestRepo) UpdateStatus(_ context.Context, id int, status models.TeamRequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, ok := f.requests[id]
	if !ok {
		return repositories.ErrTeamRequestNotFound
	}
	request.Status = status
	return nil
}

func (f *fakeTeamRequestRepo) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   int
	profiles map[int]*models.Profile
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{nextID: 1, profiles: make(map[int]*models.Profile)}
	for _, profile := range profiles {
		repo.profiles[profile.ID] = profile
		if profile.ID >= repo.nextID {
			repo.nextID = profile.ID + 1
		}
	}
	return repo
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Эмулируем уникальные ограничения таблицы profiles.
	for _, existing := range f.profiles {
		if profile.Email != nil && existing.Email != nil && *existing.Email == *profile.Email {
			return repositories.ErrProfileEmailConflict
		}
		if existing.Username == profile.Username {
			return repositories.ErrProfileUsernameConflict
		}
		if profile.GithubID != nil && existing.GithubID != nil && *existing.GithubID == *profile.GithubID {
			return repositories.ErrProfileGithubConflict
		}
	}

	profile.ID = f.nextID
	f.nextID++
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id int) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.Email != nil && *profile.Email == email {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetByGithubID(_ context.Context, githubID int64) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.GithubID != nil && *profile.GithubID == githubID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.ID]; !ok {
		return repositories.ErrProfileNotFound
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			result = append(result, profile)
		}
	}
	return result, nil
}

func (f *fakeProfileRepo) Search(_ context.Context, _ models.ProfileFilter) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*models.Profile, 0, len(f.profiles))
	for _, profile := range f.profiles {
		result = append(result, profile)
	}
	return result, nil
}

func testProfiles() (*models.Profile, *models.Profile) {
	u1 := &models.Profile{ID: 1, Username: "alice", FullName: "Alice Dev", Role: models.RoleUser}
	u2 := &models.Profile{ID: 2, Username: "bob", FullName: "Bob Dev", Role: models.RoleUser}
	return u1, u2
}

func newRequestService(requestRepo *fakeTeamRequestRepo, profileRepo *fakeProfileRepo) TeamRequestService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTeamRequestService(requestRepo, profileRepo, nil, nil, logger)
}

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesPendingRequest", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "Хочу в команду на ближайший хакатон")
		require.NoError(t, err)
		assert.Equal(t, models.RequestPending, request.Status)
		assert.NotZero(t, request.ID)
	})

	t.Run("DuplicateReturnsAlreadySent", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		_, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "first")
		require.NoError(t, err)

		_, err = service.SubmitRequest(ctx, u1.ID, u2.ID, "second")
		assert.ErrorIs(t, err, ErrRequestAlreadySent)
		assert.Equal(t, 1, requestRepo.rowCount())
	})

	t.Run("RejectedPairStaysBlocked", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "first")
		require.NoError(t, err)
		_, err = service.Respond(ctx, request.ID, u2.ID, models.DecisionReject)
		require.NoError(t, err)

		// Пара проверяется независимо от статуса, отказ — окончательный.
		_, err = service.SubmitRequest(ctx, u1.ID, u2.ID, "please reconsider")
		assert.ErrorIs(t, err, ErrRequestAlreadySent)
	})

	t.Run("ReverseDirectionIsAllowed", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		_, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "from alice")
		require.NoError(t, err)

		_, err = service.SubmitRequest(ctx, u2.ID, u1.ID, "from bob")
		assert.NoError(t, err)
		assert.Equal(t, 2, requestRepo.rowCount())
	})

	t.Run("SelfRequestForbidden", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		_, err := service.SubmitRequest(ctx, u1.ID, u1.ID, "me and myself")
		assert.ErrorIs(t, err, ErrSelfRequestForbidden)
	})

	t.Run("EmptyMessageRejected", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		_, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "   ")
		assert.ErrorIs(t, err, ErrRequestMessageRequired)
	})

	t.Run("UnknownReceiver", func(t *testing.T) {
		u1, _ := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1))

		_, err := service.SubmitRequest(ctx, u1.ID, 999, "hello")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	// Обе конкурентные отправки проходят предварительную проверку пары,
	// но уникальный индекс пропускает ровно одну вставку.
	t.Run("ConcurrentDuplicateLosesOnIndex", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		const attempts = 8
		errs := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "race")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrRequestAlreadySent)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, requestRepo.rowCount())
	})
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyBoardHasEmptyCollections", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		board, err := service.ListRequests(ctx, u1.ID)
		require.NoError(t, err)
		assert.NotNil(t, board.Incoming)
		assert.NotNil(t, board.Sent)
		assert.NotNil(t, board.Teammates)
		assert.Empty(t, board.Incoming)
		assert.Empty(t, board.Sent)
		assert.Empty(t, board.Teammates)
	})

	t.Run("PendingShowsInSentAndIncoming", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		_, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "let's team up")
		require.NoError(t, err)

		senderBoard, err := service.ListRequests(ctx, u1.ID)
		require.NoError(t, err)
		require.Len(t, senderBoard.Sent, 1)
		assert.Empty(t, senderBoard.Incoming)
		assert.Empty(t, senderBoard.Teammates)
		require.NotNil(t, senderBoard.Sent[0].Receiver)
		assert.Equal(t, "bob", senderBoard.Sent[0].Receiver.Username)

		receiverBoard, err := service.ListRequests(ctx, u2.ID)
		require.NoError(t, err)
		require.Len(t, receiverBoard.Incoming, 1)
		assert.Empty(t, receiverBoard.Sent)
		assert.Empty(t, receiverBoard.Teammates)
		require.NotNil(t, receiverBoard.Incoming[0].Sender)
		assert.Equal(t, "alice", receiverBoard.Incoming[0].Sender.Username)
	})

	t.Run("AcceptMovesRequestToTeammatesForBoth", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "let's team up")
		require.NoError(t, err)

		_, err = service.Respond(ctx, request.ID, u2.ID, models.DecisionAccept)
		require.NoError(t, err)

		for _, userID := range []int{u1.ID, u2.ID} {
			board, err := service.ListRequests(ctx, userID)
			require.NoError(t, err)
			assert.Empty(t, board.Incoming)
			assert.Empty(t, board.Sent)
			require.Len(t, board.Teammates, 1)
			assert.Equal(t, models.RequestAccepted, board.Teammates[0].Status)
		}
	})

	t.Run("RejectHidesRequestButKeepsRow", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "let's team up")
		require.NoError(t, err)

		_, err = service.Respond(ctx, request.ID, u2.ID, models.DecisionReject)
		require.NoError(t, err)

		for _, userID := range []int{u1.ID, u2.ID} {
			board, err := service.ListRequests(ctx, userID)
			require.NoError(t, err)
			assert.Empty(t, board.Incoming)
			assert.Empty(t, board.Sent)
			assert.Empty(t, board.Teammates)
		}

		// Строка не удаляется, только меняет статус.
		assert.Equal(t, 1, requestRepo.rowCount())
		stored, err := requestRepo.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestRejected, stored.Status)
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("OnlyReceiverMayRespond", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "let's team up")
		require.NoError(t, err)

		_, err = service.Respond(ctx, request.ID, u1.ID, models.DecisionAccept)
		assert.ErrorIs(t, err, ErrNotRequestReceiver)

		_, err = service.Respond(ctx, request.ID, 42, models.DecisionAccept)
		assert.ErrorIs(t, err, ErrNotRequestReceiver)
	})

	t.Run("UnknownDecision", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		_, err := service.Respond(ctx, 1, u2.ID, models.RequestDecision("maybe"))
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		u1, u2 := testProfiles()
		service := newRequestService(newFakeTeamRequestRepo(), newFakeProfileRepo(u1, u2))

		_, err := service.Respond(ctx, 404, u2.ID, models.DecisionAccept)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("RepeatedRespondOverwritesStatus", func(t *testing.T) {
		u1, u2 := testProfiles()
		requestRepo := newFakeTeamRequestRepo()
		service := newRequestService(requestRepo, newFakeProfileRepo(u1, u2))

		request, err := service.SubmitRequest(ctx, u1.ID, u2.ID, "let's team up")
		require.NoError(t, err)

		_, err = service.Respond(ctx, request.ID, u2.ID, models.DecisionReject)
		require.NoError(t, err)

		updated, err := service.Respond(ctx, request.ID, u2.ID, models.DecisionAccept)
		require.NoError(t, err)
		assert.Equal(t, models.RequestAccepted, updated.Status)
	})
}
