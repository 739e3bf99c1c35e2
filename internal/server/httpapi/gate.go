package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
)

// identityHandler receives the identity resolved for the request.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// resolve maps the request's session cookie to an identity. A missing or
// malformed cookie and an unknown token all give an anonymous identity;
// only a storage failure is an error.
func (s *Server) resolve(r *http.Request) (auth.Identity, error) {
	token, ok := auth.TokenFromCookies(r.Header.Values("Cookie"))
	if !ok {
		return auth.Anonymous(), nil
	}

	user, found, err := s.deps.Sessions.Resolve(r.Context(), token)
	if err != nil {
		return auth.Anonymous(), err
	}
	if !found {
		return auth.Anonymous().WithToken(token), nil
	}
	return auth.NewIdentity(*user, token), nil
}

// withIdentity resolves the session once and passes the result on. It does
// not reject anonymous requests.
func (s *Server) withIdentity(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.resolve(r)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		next(w, r, id)
	}
}

// authed is withIdentity for handlers that need a user; anonymous requests
// fail with 401.
func (s *Server) authed(next identityHandler) http.HandlerFunc {
	return s.withIdentity(func(w http.ResponseWriter, r *http.Request, id auth.Identity) {
		if _, ok := id.CurrentUser(); !ok {
			s.writeServiceError(w, r, common.ErrUnauthenticated)
			return
		}
		next(w, r, id)
	})
}
