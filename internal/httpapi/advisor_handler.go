package httpapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/thiagovferrari/crm2026/internal/service"

	"go.uber.org/zap"
)

// AdvisorHandler 策略建议接口处理器
// Keeps a per-contact in-flight flag so a second request while a suggestion
// is being generated is rejected instead of duplicated.
type AdvisorHandler struct {
	advisor  *service.AdvisorService
	contacts *service.ContactService
	auth     service.AuthService
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewAdvisorHandler(advisor *service.AdvisorService, contacts *service.ContactService, auth service.AuthService, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisor:  advisor,
		contacts: contacts,
		auth:     auth,
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

type suggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// Suggest handles POST /crm/api/v1/suggestions/{contactID}.
func (h *AdvisorHandler) Suggest(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		session := requireSession(w, r, h.auth)
		if session == nil {
			return
		}

		contactID := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
		if contactID == "" || strings.Contains(contactID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		h.mu.Lock()
		if h.inFlight[contactID] {
			h.mu.Unlock()
			writeJSON(w, http.StatusConflict, Fail("suggestion already in progress"))
			return
		}
		h.inFlight[contactID] = true
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.inFlight, contactID)
			h.mu.Unlock()
		}()

		contact, err := h.contacts.Get(r.Context(), session.UserID, contactID)
		if err != nil {
			writeError(w, err)
			return
		}

		suggestion := h.advisor.Suggest(r.Context(), contact)
		writeJSON(w, http.StatusOK, Ok(suggestionResponse{Suggestion: suggestion}))
	}
}
