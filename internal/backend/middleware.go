package backend

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// Authenticator resolves the principal behind an access token.
type Authenticator interface {
	Authenticate(realm, accessToken string) (model.Principal, error)
}

// Authenticate validates the access cookie against the realm in the URL and puts
// the principal on the request context.
type Authenticate struct {
	sessions       Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(sessions Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, logger: logger}
}

func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		realm := chi.URLParam(r, "realm")

		cookie, err := r.Cookie(accessCookie)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "missing access token")
			return
		}

		p, err := m.sessions.Authenticate(realm, cookie.Value)
		if err != nil {
			m.logger.Debug("access token rejected", "realm", realm, "error", err)
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetPrincipalToContext(r.Context(), p)))
	})
}

// Hits counts requests by "METHOD path".
type Hits struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewHits() *Hits {
	return &Hits{counts: make(map[string]int)}
}

func (h *Hits) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.counts[r.Method+" "+r.URL.Path]++
		h.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (h *Hits) Count(call string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[call]
}
