package backend

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// userNamespace derives stable user IDs from login IDs.
var userNamespace = uuid.MustParse("6f1f6f0e-3c55-4d8c-9a1e-2f4b7d0c9a11")

type loginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type principalBody struct {
	UserID string `json:"userId"`
	Realm  string `json:"realm"`
}

type echoBody struct {
	Method      string `json:"method"`
	ContentType string `json:"contentType"`
	Length      int    `json:"length"`
}

// Handler serves the session endpoints.
type Handler struct {
	sessions       *Sessions
	contextManager model.ContextManager
	accessTTL      time.Duration
	refreshTTL     time.Duration
	secureCookies  bool
	logger         *logger.Logger
}

func NewHandler(sessions *Sessions, contextManager model.ContextManager, accessTTL, refreshTTL time.Duration, secureCookies bool, logger *logger.Logger) *Handler {
	return &Handler{
		sessions:       sessions,
		contextManager: contextManager,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

// Login accepts any non-empty credentials and sets the token cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	realm := chi.URLParam(r, "realm")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}
	if strings.TrimSpace(req.LoginID) == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	p := model.Principal{UserID: uuid.NewSHA1(userNamespace, []byte(realm+":"+req.LoginID)), Realm: realm}
	access, refresh, err := h.sessions.Issue(r.Context(), p)
	if err != nil {
		h.logger.Error("Session handler: login failed", "realm", realm, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.setCookies(w, access, refresh)
	h.logger.Info("Session handler: login completed", "realm", realm, "user_id", p.UserID.String())
	writeJSON(w, http.StatusOK, principalBody{UserID: p.UserID.String(), Realm: realm})
}

// Refresh rotates the refresh cookie and issues a new access cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	realm := chi.URLParam(r, "realm")

	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	access, refresh, err := h.sessions.Refresh(r.Context(), realm, cookie.Value)
	if err != nil {
		h.logger.Info("Session handler: refresh rejected", "realm", realm, "error", err.Error())
		writeError(w, http.StatusUnauthorized, "refresh rejected")
		return
	}

	h.setCookies(w, access, refresh)
	w.WriteHeader(http.StatusNoContent)
}

// Logout revokes the refresh token and clears both cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.RevokeByToken(r.Context(), cookie.Value); err != nil {
			h.logger.Debug("Session handler: revoke on logout failed", "error", err)
		}
	}
	h.clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Auth returns the authenticated principal.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	p, ok := h.contextManager.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, []principalBody{{UserID: p.UserID.String(), Realm: p.Realm}})
}

// Echo describes the request it received.
func (h *Handler) Echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	writeJSON(w, http.StatusOK, echoBody{Method: r.Method, ContentType: mediaType, Length: len(body)})
}

func (h *Handler) setCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{Name: accessCookie, Value: access, Path: "/", HttpOnly: true, Secure: h.secureCookies, SameSite: http.SameSiteLaxMode, MaxAge: int(h.accessTTL.Seconds())})
	http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: refresh, Path: "/", HttpOnly: true, Secure: h.secureCookies, SameSite: http.SameSiteLaxMode, MaxAge: int(h.refreshTTL.Seconds())})
}

func (h *Handler) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", HttpOnly: true, Secure: h.secureCookies, SameSite: http.SameSiteLaxMode, MaxAge: -1})
	}
}
