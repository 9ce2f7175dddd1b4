package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	account, err := h.accounts.GetProfile(r.Context(), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account.ToProfile())
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account.ToProfile())
}

// CreateAccount is role-scoped managed creation: the service enforces
// that ADMIN may only create students.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	account, err := h.accounts.CreateManagedAccount(r.Context(), callerRole(r), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, account.ToProfile())
}

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	accounts, err := h.accounts.ListAccounts(r.Context(), callerRole(r), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	profiles := make([]*domain.Profile, len(accounts))
	for i := range accounts {
		profiles[i] = accounts[i].ToProfile()
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account ID", "INVALID_INPUT")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), callerRole(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account.ToProfile())
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), callerRole(r), id, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, account.ToProfile())
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account ID", "INVALID_INPUT")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), callerRole(r), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
