package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/services"
)

// TokenVerifier checks a session token and returns who it belongs to.
type TokenVerifier interface {
	Verify(token string) (*services.Identity, error)
}

// MemberLookup resolves the current roster entry of a session holder.
type MemberLookup interface {
	GetMember(ctx context.Context, clubCode, name string) (*models.Member, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// puts the session identity into the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin lets through only club admins. The role is read from the
// roster, so a demoted member loses access before the token expires.
func RequireAdmin(members MemberLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := GetIdentityFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			member, err := members.GetMember(r.Context(), identity.ClubCode, identity.PlayerName)
			switch {
			case errors.Is(err, services.ErrClubNotFound), errors.Is(err, services.ErrMemberNotFound):
				writeError(w, http.StatusUnauthorized, "session no longer matches a club member")
				return
			case err != nil:
				writeError(w, http.StatusInternalServerError, "failed to check member role")
				return
			}

			if member.Role != models.RoleAdmin {
				writeError(w, http.StatusForbidden, services.ErrForbiddenOperation.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
