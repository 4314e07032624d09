// Package remotetest runs an in-process stand-in for the schedule service.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/settings"
)

// Stats counts what the server has seen.
type Stats struct {
	Logins       int
	Refreshes    int
	Unauthorized int
	Retried      int
	Saves        int
	Protected    map[string]int
}

// Server is a fake schedule service.
type Server struct {
	*httptest.Server

	// BeforeRefresh, when set, runs at the start of every refresh call.
	BeforeRefresh func()
	// RejectRefresh makes every refresh answer 401.
	RejectRefresh bool
	// RejectRetried makes every request carrying the refreshed marker
	// answer 401.
	RejectRetried bool
	// FailSaves makes schedule saves answer 500.
	FailSaves bool

	mu        sync.Mutex
	counter   int
	users     map[string]string
	access    map[string]string
	refresh   map[string]string
	schedules map[string]map[string]*schedule.Schedule
	settings  map[string]settings.Settings
	telegram  map[string]bool
	stats     Stats
}

// New starts a server. Close it when done.
func New() *Server {
	s := &Server{
		users:     make(map[string]string),
		access:    make(map[string]string),
		refresh:   make(map[string]string),
		schedules: make(map[string]map[string]*schedule.Schedule),
		settings:  make(map[string]settings.Settings),
		telegram:  make(map[string]bool),
		stats:     Stats{Protected: make(map[string]int)},
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.refreshToken).Methods(http.MethodPost)
	api.HandleFunc("/user/settings", s.authed(s.getSettings)).Methods(http.MethodGet)
	api.HandleFunc("/user/settings", s.authed(s.putSettings)).Methods(http.MethodPut)
	api.HandleFunc("/schedule/save", s.authed(s.saveSchedule)).Methods(http.MethodPost)
	api.HandleFunc("/schedule/by-date/{date}", s.authed(s.scheduleByDate)).Methods(http.MethodGet)
	api.HandleFunc("/telegram/link-code", s.authed(s.linkCode)).Methods(http.MethodPost)
	api.HandleFunc("/telegram/unlink", s.authed(s.unlink)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/api/"
}

// AddUser registers an account.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// ExpireAccess invalidates every access token issued so far.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// Issue mints tokens for username without a login call.
func (s *Server) Issue(username string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// PutSchedule stores a schedule as if the user had saved it.
func (s *Server) PutSchedule(username string, sch *schedule.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putScheduleLocked(username, sch)
}

// Schedule returns what the user saved for date, or nil.
func (s *Server) Schedule(username, date string) *schedule.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedules[username][date]
}

// SetTelegramLinked flips the user's Telegram link.
func (s *Server) SetTelegramLinked(username string, linked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telegram[username] = linked
}

// Settings returns the settings stored for username.
func (s *Server) Settings(username string) (settings.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[username]
	return st, ok
}

// Stats returns a copy of the counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Protected = make(map[string]int, len(s.stats.Protected))
	for k, v := range s.stats.Protected {
		out.Protected[k] = v
	}
	return out
}

func (s *Server) issueLocked(username string) (string, string) {
	s.counter++
	access := fmt.Sprintf("access-%d", s.counter)
	refresh := fmt.Sprintf("refresh-%d", s.counter)
	s.access[access] = username
	s.refresh[refresh] = username
	return access, refresh
}

func (s *Server) putScheduleLocked(username string, sch *schedule.Schedule) {
	if s.schedules[username] == nil {
		s.schedules[username] = make(map[string]*schedule.Schedule)
	}
	s.schedules[username][sch.Date] = sch
}

func (s *Server) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		retried := r.Header.Get("Token-Refreshed") != ""

		s.mu.Lock()
		if retried {
			s.stats.Retried++
		}
		user, ok := s.access[token]
		if !ok || (retried && s.RejectRetried) {
			s.stats.Unauthorized++
			s.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		s.stats.Protected[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		next(w, r, user)
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Logins++
	if pw, ok := s.users[c.Username]; !ok || pw != c.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
		return
	}
	access, refresh := s.issueLocked(c.Username)
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[c.Username]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Username already taken"})
		return
	}
	s.users[c.Username] = c.Password
	access, refresh := s.issueLocked(c.Username)
	writeJSON(w, http.StatusCreated, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
		"message":      "Account created",
	})
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	if s.BeforeRefresh != nil {
		s.BeforeRefresh()
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Refreshes++
	user, ok := s.refresh[body.RefreshToken]
	if !ok || s.RejectRefresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
		return
	}
	s.counter++
	access := fmt.Sprintf("access-%d", s.counter)
	s.access[access] = user
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[user]
	if !ok {
		st = settings.Defaults()
		st.Name = user
	}
	st.TelegramLinked = s.telegram[user]
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request, user string) {
	var u settings.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[user] = settings.Settings{
		Name:                 u.Name,
		RemindBeforeActivity: u.RemindBeforeActivity,
		RemindOnStart:        u.RemindOnStart,
		NudgeDuringActivity:  u.NudgeDuringActivity,
		CongratulateOnFinish: u.CongratulateOnFinish,
		DefaultSlotDuration:  u.DefaultSlotDuration,
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Settings updated"})
}

func (s *Server) saveSchedule(w http.ResponseWriter, r *http.Request, user string) {
	var body struct {
		Schedule *schedule.Schedule `json:"schedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Schedule == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "storage unavailable"})
		return
	}
	s.stats.Saves++
	s.putScheduleLocked(user, body.Schedule)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Schedule saved"})
}

func (s *Server) scheduleByDate(w http.ResponseWriter, r *http.Request, user string) {
	date := mux.Vars(r)["date"]
	s.mu.Lock()
	sch := s.schedules[user][date]
	s.mu.Unlock()
	if sch == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no schedule for " + date})
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (s *Server) linkCode(w http.ResponseWriter, _ *http.Request, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	writeJSON(w, http.StatusOK, map[string]string{
		"code":      fmt.Sprintf("LINK%04d", s.counter),
		"expiresAt": "2030-01-01T00:10:00Z",
		"message":   "Send this code to the bot within 10 minutes",
	})
}

func (s *Server) unlink(w http.ResponseWriter, _ *http.Request, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telegram[user] = false
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Telegram unlinked"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
