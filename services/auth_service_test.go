package services

import (
	"context"
	"testing"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesUserProfile", func(t *testing.T) {
		service := NewAuthService(newFakeProfileRepo(), nil)

		profile, err := service.Register(ctx, RegisterInput{
			Username: "alice",
			FullName: "Alice Dev",
			Email:    "Alice@Example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, profile.Role)
		require.NotNil(t, profile.Email)
		assert.Equal(t, "alice@example.com", *profile.Email)
		require.NotNil(t, profile.PasswordHash)
		assert.NotEqual(t, "correct-horse", *profile.PasswordHash)
	})

	t.Run("AllowListedEmailBecomesAdmin", func(t *testing.T) {
		service := NewAuthService(newFakeProfileRepo(), []string{" Admin@Example.com "})

		profile, err := service.Register(ctx, RegisterInput{
			Username: "root",
			Email:    "admin@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, profile.Role)
	})

	t.Run("ShortPasswordRejected", func(t *testing.T) {
		service := NewAuthService(newFakeProfileRepo(), nil)

		_, err := service.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = service.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = service.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		profile, err := service.Login(ctx, models.Credentials{Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		assert.Nil(t, profile.PasswordHash)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		_, err = service.Login(ctx, models.Credentials{Email: "alice@example.com", Password: "wrong-horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		service := NewAuthService(newFakeProfileRepo(), nil)

		_, err := service.Login(ctx, models.Credentials{Email: "nobody@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("OAuthOnlyProfileHasNoPassword", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.LoginWithGithub(ctx, &oauth.GitHubUser{
			ID:    42,
			Login: "alice",
			Email: "alice@example.com",
		})
		require.NoError(t, err)

		_, err = service.Login(ctx, models.Credentials{Email: "alice@example.com", Password: "anything-at-all"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginWithGithub(t *testing.T) {
	ctx := context.Background()

	ghUser := func() *oauth.GitHubUser {
		return &oauth.GitHubUser{
			ID:        42,
			Login:     "alice",
			Name:      "Alice Dev",
			Email:     "alice@example.com",
			AvatarURL: "https://avatars.example.com/alice",
			HTMLURL:   "https://github.com/alice",
		}
	}

	t.Run("FirstLoginCreatesProfile", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		profile, err := service.LoginWithGithub(ctx, ghUser())
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
		require.NotNil(t, profile.GithubID)
		assert.Equal(t, int64(42), *profile.GithubID)
		require.NotNil(t, profile.GithubURL)
		assert.Equal(t, "https://github.com/alice", *profile.GithubURL)
	})

	t.Run("SecondLoginReturnsSameProfile", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		first, err := service.LoginWithGithub(ctx, ghUser())
		require.NoError(t, err)

		second, err := service.LoginWithGithub(ctx, ghUser())
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("TakenUsernameGetsSuffix", func(t *testing.T) {
		repo := newFakeProfileRepo()
		service := NewAuthService(repo, nil)

		_, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		profile, err := service.LoginWithGithub(ctx, ghUser())
		require.NoError(t, err)
		assert.Equal(t, "alice-42", profile.Username)
	})

	t.Run("AllowListedEmailBecomesAdmin", func(t *testing.T) {
		service := NewAuthService(newFakeProfileRepo(), []string{"alice@example.com"})

		profile, err := service.LoginWithGithub(ctx, ghUser())
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, profile.Role)
	})
}
