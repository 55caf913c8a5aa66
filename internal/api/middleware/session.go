package middleware

import (
	"net/http"

	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/session"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
)

// SessionMiddleware blocks booking and submit actions client-side when no
// live session token is stored, before any upstream call is made.
type SessionMiddleware struct {
	session *session.Store
}

func NewSessionMiddleware(sess *session.Store) *SessionMiddleware {
	return &SessionMiddleware{session: sess}
}

func (m *SessionMiddleware) RequireSession(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if !m.session.LoggedIn(r.Context()) {
			LoggerFromContext(r.Context()).Warn("Blocked action without a session token")
			response.Error(w, apperrors.UnauthorizedError("Login to book the table"))

			return
		}

		next.ServeHTTP(w, r)
	}
}
