package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-ladder/models"
	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimClubCode   = "club_code"
	jwtClaimPlayerName = "player_name"
	jwtClaimRole       = "role"
)

// Identity is who a verified session token speaks for.
type Identity struct {
	ClubCode   string            `json:"club_code"`
	PlayerName string            `json:"player_name"`
	Role       models.MemberRole `json:"role"`
}

type Session struct {
	Identity
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionService interface {
	Login(ctx context.Context, clubCode, playerName string) (*Session, error)
	Issue(club *models.Club, member *models.Member) (*Session, error)
	Verify(token string) (*Identity, error)
}

type sessionService struct {
	clubs     ClubService
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewSessionService(clubs ClubService, jwtSecret string, ttl time.Duration) SessionService {
	return &sessionService{
		clubs:     clubs,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Login opens a session for a roster member. Club code and player name are
// the only credentials.
func (s *sessionService) Login(ctx context.Context, clubCode, playerName string) (*Session, error) {
	clubCode, playerName = normalizeName(clubCode), normalizeName(playerName)
	if clubCode == "" || playerName == "" {
		return nil, fmt.Errorf("%w: club code and player name are required", ErrValidationFailed)
	}
	club, err := s.clubs.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}
	member, err := s.clubs.GetMember(ctx, club.Code, playerName)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerName)
		}
		return nil, err
	}
	return s.Issue(club, member)
}

func (s *sessionService) Issue(club *models.Club, member *models.Member) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		jwtClaimClubCode:   club.Code,
		jwtClaimPlayerName: member.Name,
		jwtClaimRole:       string(member.Role),
		"exp":              expiresAt.Unix(),
		"iat":              now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{
		Identity: Identity{
			ClubCode:   club.Code,
			PlayerName: member.Name,
			Role:       member.Role,
		},
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *sessionService) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrAuthenticationFailed
	}

	identity := &Identity{}
	for claim, dest := range map[string]*string{
		jwtClaimClubCode:   &identity.ClubCode,
		jwtClaimPlayerName: &identity.PlayerName,
	} {
		value, ok := claims[claim].(string)
		if !ok || value == "" {
			return nil, fmt.Errorf("%w: missing '%s' claim", ErrAuthenticationFailed, claim)
		}
		*dest = value
	}
	role, _ := claims[jwtClaimRole].(string)
	identity.Role = models.MemberRole(role)
	return identity, nil
}
