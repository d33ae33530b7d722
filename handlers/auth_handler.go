package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/oauth"
	"github.com/Dosada05/hackmate/services"
	"github.com/golang-jwt/jwt/v4"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	authService services.AuthService
	github      *oauth.GitHubProvider
	jwtSecret   []byte
	publicURL   string
}

func NewAuthHandler(authService services.AuthService, github *oauth.GitHubProvider, jwtSecret string, publicURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		github:      github,
		jwtSecret:   []byte(jwtSecret),
		publicURL:   publicURL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		badRequestResponse(w, r, errors.New("username, email, and password are required"))
		return
	}

	profile, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"user":  profile,
		"token": token,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"user":  profile,
		"token": token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GithubLogin начинает authorization code flow: выставляет state-куку
// и уводит пользователя на страницу авторизации GitHub.
func (h *AuthHandler) GithubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// GithubCallback завершает flow: сверяет state, меняет код на профиль
// GitHub, создает либо обновляет учетку и возвращает пользователя на
// фронтенд с токеном сессии.
func (h *AuthHandler) GithubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		badRequestResponse(w, r, errors.New("invalid oauth state"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		badRequestResponse(w, r, errors.New("missing oauth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	profile, err := h.authService.LoginWithGithub(r.Context(), ghUser)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	redirect := h.publicURL + "/auth/callback?" + url.Values{"token": {token}}.Encode()
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateToken(profile *models.Profile) (string, error) {
	claims := jwt.MapClaims{
		"user_id": profile.ID,
		"role":    string(profile.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func generateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
