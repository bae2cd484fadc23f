package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed  = errors.New("validation failed")
	ErrTieScore          = errors.New("match scores cannot be equal")
	ErrDuplicatePlayer   = errors.New("a player cannot appear twice in one match")
	ErrTeamsNotDistinct  = errors.New("tournament teams must be two different teams")
	ErrNoWinner          = errors.New("sets do not produce a winner")
	ErrInvalidTier       = errors.New("unknown subscription tier")
	ErrInvalidCourtCount = errors.New("court count out of range")
	ErrNameRequired      = errors.New("name is required")
	ErrTournamentTeams   = errors.New("invalid tournament teams")
	ErrInvalidGroupCount = errors.New("invalid number of groups")
	ErrInvalidRoundCount = errors.New("invalid number of knockout rounds")
	ErrInvalidMatchStage = errors.New("invalid match stage")
	ErrNotEnoughPlayers  = errors.New("at least four players are required")

	// Ошибки "не найдено"
	ErrNotFound           = errors.New("requested resource not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrPlayerNotFound     = errors.New("player not found in club")
	ErrGameNotFound       = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamsNotFound      = errors.New("team not found in tournament")
	ErrKnockoutNotFound   = errors.New("knockout match not found")

	// Ошибки состояния
	ErrWrongStage          = errors.New("tournament is not in the required stage")
	ErrByeMatch            = errors.New("knockout match is a bye")
	ErrMatchNotReady       = errors.New("knockout match is waiting for a team")
	ErrMatchAlreadyDecided = errors.New("knockout match already decided")
	ErrNoQualifiers        = errors.New("no team qualified from the group stage")

	// Ошибки конфликтов
	ErrClubCodeConflict   = errors.New("club code already in use")
	ErrMemberNameConflict = errors.New("member name already taken in this club")
	ErrLastAdmin          = errors.New("the last admin cannot be demoted or removed")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current member")
	ErrCannotRemoveSelf     = errors.New("members cannot remove themselves")

	ErrArchiveDisabled = errors.New("archive storage is not configured")
)
