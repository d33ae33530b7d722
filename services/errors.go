package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrRequestMessageRequired = errors.New("request message is required")
	ErrSelfRequestForbidden   = errors.New("cannot send a team request to yourself")
	ErrInvalidDecision        = errors.New("decision must be accept or reject")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrHackathonTitleRequired = errors.New("hackathon title is required")
	ErrHackathonInvalidDates  = errors.New("hackathon end date must not be before start date")

	// Ошибки конфликтов
	ErrRequestAlreadySent = errors.New("team request already sent to this user")
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrUsernameTaken      = errors.New("username is already in use")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")
	ErrNotRequestReceiver  = errors.New("only the request receiver can respond to it")
	ErrAdminOnly           = errors.New("administrator privileges required")

	// Ошибки, специфичные для сущностей
	ErrProfileNotFound   = errors.New("profile not found")
	ErrRequestNotFound   = errors.New("team request not found")
	ErrHackathonNotFound = errors.New("hackathon not found")
)
