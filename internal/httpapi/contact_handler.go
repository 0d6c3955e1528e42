package httpapi

import (
	"net/http"
	"strings"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/service"
	"github.com/thiagovferrari/crm2026/internal/store"

	"go.uber.org/zap"
)

// ContactHandler 联系人及子记录接口处理器
type ContactHandler struct {
	contacts *service.ContactService
	auth     service.AuthService
	logger   *zap.Logger
}

func NewContactHandler(contacts *service.ContactService, auth service.AuthService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, auth: auth, logger: logger}
}

// Collection handles /crm/api/v1/contacts (list, create).
func (h *ContactHandler) Collection(w http.ResponseWriter, r *http.Request) {
	session := requireSession(w, r, h.auth)
	if session == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query().Get("query")
		status := domain.ContactStatus(r.URL.Query().Get("status"))
		if status == "" {
			status = domain.StatusAll
		}
		contacts, err := h.contacts.List(r.Context(), session.UserID, query, status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(contacts))

	case http.MethodPost:
		var input store.ContactInput
		if err := readBodyJSON(r, &input); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		created, err := h.contacts.Create(r.Context(), session.UserID, input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(created))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Subtree handles /crm/api/v1/contacts/{id}[/...]: the single-contact
// operations and every child-record route underneath it.
func (h *ContactHandler) Subtree(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := requireSession(w, r, h.auth)
		if session == nil {
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, prefix)
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		contactID := parts[0]

		switch {
		case len(parts) == 1:
			h.contact(w, r, session.UserID, contactID)
		case len(parts) == 2:
			h.childCollection(w, r, session.UserID, contactID, parts[1])
		case len(parts) == 3:
			h.childItem(w, r, session.UserID, contactID, parts[1], parts[2])
		case len(parts) == 4 && parts[1] == "alerts" && parts[3] == "settle" && r.Method == http.MethodPost:
			if err := h.contacts.SettleAlert(r.Context(), session.UserID, contactID, parts[2]); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok[any](nil))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (h *ContactHandler) contact(w http.ResponseWriter, r *http.Request, userID, contactID string) {
	switch r.Method {
	case http.MethodGet:
		contact, err := h.contacts.Get(r.Context(), userID, contactID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(contact))

	case http.MethodPut, http.MethodPatch:
		var patch repository.ContactPatch
		if err := readBodyJSON(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		if err := h.contacts.Update(r.Context(), userID, contactID, patch); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))

	case http.MethodDelete:
		confirmed := r.URL.Query().Get("confirm") == "true"
		if err := h.contacts.Delete(r.Context(), userID, contactID, confirmed); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ContactHandler) childCollection(w http.ResponseWriter, r *http.Request, userID, contactID, collection string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	switch collection {
	case "interactions":
		var rec domain.Interaction
		if err := readBodyJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		created, err := h.contacts.AddInteraction(ctx, userID, contactID, rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(created))

	case "financials":
		var rec domain.FinancialRecord
		if err := readBodyJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		created, err := h.contacts.AddFinancial(ctx, userID, contactID, rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(created))

	case "alerts":
		var rec domain.BillingAlert
		if err := readBodyJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		created, err := h.contacts.AddAlert(ctx, userID, contactID, rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(created))

	case "notes":
		var rec domain.InternalNote
		if err := readBodyJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		created, err := h.contacts.AddNote(ctx, userID, contactID, rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(created))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ContactHandler) childItem(w http.ResponseWriter, r *http.Request, userID, contactID, collection, id string) {
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		var err error
		switch collection {
		case "interactions":
			err = h.contacts.DeleteInteraction(ctx, userID, contactID, id)
		case "financials":
			err = h.contacts.DeleteFinancial(ctx, userID, contactID, id)
		case "alerts":
			err = h.contacts.DeleteAlert(ctx, userID, contactID, id)
		case "notes":
			err = h.contacts.DeleteNote(ctx, userID, contactID, id)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))
		return
	}

	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	switch collection {
	case "interactions":
		var patch repository.InteractionPatch
		if err := readBodyJSON(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		if err := h.contacts.UpdateInteraction(ctx, userID, contactID, id, patch); err != nil {
			writeError(w, err)
			return
		}

	case "financials":
		var rec domain.FinancialRecord
		if err := readBodyJSON(r, &rec); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		rec.ID = id
		if err := h.contacts.UpdateFinancial(ctx, userID, contactID, rec); err != nil {
			writeError(w, err)
			return
		}

	case "alerts":
		var patch repository.AlertPatch
		if err := readBodyJSON(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		if err := h.contacts.UpdateAlert(ctx, userID, contactID, id, patch); err != nil {
			writeError(w, err)
			return
		}

	case "notes":
		var note domain.InternalNote
		if err := readBodyJSON(r, &note); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		if err := h.contacts.UpdateNote(ctx, userID, contactID, id, note.Content, note.Date); err != nil {
			writeError(w, err)
			return
		}

	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, Ok[any](nil))
}
