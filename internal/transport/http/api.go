package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"category-quiz-service/internal/app"
	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Auth        *app.AuthService
	Quizzes     *app.QuizService
	Leaderboard *app.LeaderboardService
	Profiles    *app.ProfileService
	// Uploads serves locally stored photos; nil when an external object store is used.
	Uploads http.Handler
}

// NewRouter wires REST routes, the quiz websocket, health and metrics.
func NewRouter(s Services) http.Handler {
	api := &API{services: s}
	ws := NewWSHandler(s.Quizzes, s.Auth)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", ws.ServeWS)
	r.Get("/categories", api.handleCategories)
	if s.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", s.Uploads))
	}

	r.Post("/auth/signup", api.handleSignUp)
	r.Post("/auth/signin", api.handleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(api.requireAuth)
		r.Post("/auth/signout", api.handleSignOut)
		r.Get("/leaderboard", api.handleLeaderboard)
		r.Post("/users/{id}/like", api.handleToggleLike)
		r.Get("/profile", api.handleGetProfile)
		r.Put("/profile", api.handleUpdateProfile)
		r.Post("/profile/photo", api.handleUploadPhoto)
		r.Get("/quiz", api.handleQuizView)
	})
	return r
}

// API holds the REST handlers.
type API struct {
	services Services
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.services.Auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "must be valid JSON"}
	}
	return nil
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":  domain.Categories,
		"scoreFields": domain.ScoreFields(),
	})
}

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req app.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := a.services.Auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := a.services.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleSignOut(w http.ResponseWriter, r *http.Request) {
	a.services.Auth.SignOut(r.Context(), principal(r))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	field, err := domain.ParseScoreField(r.URL.Query().Get("field"))
	if err != nil {
		writeError(w, err)
		return
	}
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "page", Reason: "must be an integer"})
			return
		}
	}
	result, err := a.services.Leaderboard.Page(r.Context(), field, page, principal(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	result, err := a.services.Leaderboard.ToggleLike(r.Context(), chi.URLParam(r, "id"), principal(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	rec, err := a.services.Profiles.Get(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	rec, err := a.services.Profiles.Update(r.Context(), principal(r).UserID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleUploadPhoto accepts a multipart "photo" field or a raw image body.
func (a *API) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxPhotoBytes+1<<20)

	var data []byte
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, ferr := r.FormFile("photo")
		if ferr != nil {
			writeError(w, &domain.ValidationError{Field: "photo", Reason: "is required"})
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, &domain.ValidationError{Field: "photo", Reason: "must be between 1 byte and 5 MiB"})
			return
		}
		writeError(w, err)
		return
	}

	url, err := a.services.Profiles.UploadPhoto(r.Context(), principal(r).UserID, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"profilePicture": url})
}

func (a *API) handleQuizView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.services.Quizzes.View(r.Context(), principal(r).UserID))
}
