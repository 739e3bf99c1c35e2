package httpapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/common"
	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

const maxBodyBytes = 1 << 16

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type balanceResponse struct {
	Points           int64     `json:"points"`
	CanGetPointsTime time.Time `json:"can_get_points_time"`
}

type poolResponse struct {
	Points int64     `json:"points"`
	OpenAt time.Time `json:"open_at"`
	Open   bool      `json:"open"`
}

type championResponse struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

type teamResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func isFormPost(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// readCredentials accepts a JSON body or an urlencoded form.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isFormPost(r) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return credentials{}, false
		}
		return credentials{Name: r.PostForm.Get("name"), Password: r.PostForm.Get("password")}, true
	}

	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return credentials{}, false
	}
	return c, true
}

type authFunc func(ctx context.Context, name, password string) (*models.User, auth.SessionToken, error)

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, fn authFunc) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := fn(r.Context(), c.Name, c.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, auth.NewSessionCookie(token, s.deps.Sessions.TTL()))

	if isFormPost(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, s.deps.Users.Signup)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, s.deps.Users.Login)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if err := s.deps.Users.Logout(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, auth.ClearSessionCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	u, _ := id.CurrentUser()
	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Name: u.Name})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	u, _ := id.CurrentUser()

	points, err := s.deps.Points.Collect(r.Context(), u.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"points": points})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	u, _ := id.CurrentUser()

	championID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeServiceError(w, r, common.ErrNotFound)
		return
	}

	points, err := s.deps.Points.Assign(r.Context(), u.ID, championID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"champion_id": championID, "points": points})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	u, _ := id.CurrentUser()

	b, err := s.deps.Points.Balance(r.Context(), u.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Points: b.Points, CanGetPointsTime: b.CanGetPointsTime.UTC()})
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Points.PoolStatus(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, poolResponse{Points: p.Points, OpenAt: p.OpenAt.UTC(), Open: p.IsOpen(s.nowFunc())})
}

func (s *Server) handleChampions(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.Champions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]championResponse, 0, len(list))
	for _, c := range list {
		out = append(out, championResponse{ID: c.ID, TeamID: c.TeamID, Name: c.Name, Points: c.Points})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.Teams(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]teamResponse, 0, len(list))
	for _, t := range list {
		out = append(out, teamResponse{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}
