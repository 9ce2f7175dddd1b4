package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

// Course catalog

func (h *Handlers) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req domain.CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	course, err := h.records.CreateCourse(r.Context(), callerRole(r), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *Handlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	courses, err := h.records.ListCourses(r.Context(), callerRole(r), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

func (h *Handlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID", "INVALID_INPUT")
		return
	}

	course, err := h.records.GetCourse(r.Context(), callerRole(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *Handlers) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID", "INVALID_INPUT")
		return
	}

	var req domain.CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	course, err := h.records.UpdateCourse(r.Context(), callerRole(r), id, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (h *Handlers) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID", "INVALID_INPUT")
		return
	}

	if err := h.records.DeleteCourse(r.Context(), callerRole(r), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Timetable

func (h *Handlers) CreateTimetableEntry(w http.ResponseWriter, r *http.Request) {
	var req domain.TimetableEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	entry, err := h.records.CreateTimetableEntry(r.Context(), callerRole(r), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// ListTimetable lists all entries, optionally filtered by course_id,
// ordered by (day_of_week, start_time).
func (h *Handlers) ListTimetable(w http.ResponseWriter, r *http.Request) {
	var courseID *int64
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course ID", "INVALID_INPUT")
			return
		}
		courseID = &id
	}

	entries, err := h.records.ListTimetable(r.Context(), callerRole(r), courseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) UpdateTimetableEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timetable entry ID", "INVALID_INPUT")
		return
	}

	var req domain.TimetableEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	entry, err := h.records.UpdateTimetableEntry(r.Context(), callerRole(r), id, &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *Handlers) DeleteTimetableEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timetable entry ID", "INVALID_INPUT")
		return
	}

	if err := h.records.DeleteTimetableEntry(r.Context(), callerRole(r), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Student registrations

func (h *Handlers) RegisterForCourse(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.RegisterCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	reg, err := h.records.RegisterForCourse(r.Context(), callerRole(r), claims.Sub, req.CourseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

func (h *Handlers) ListMyCourses(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	courses, err := h.records.ListMyCourses(r.Context(), callerRole(r), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

func (h *Handlers) ListMyTimetable(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	entries, err := h.records.ListMyTimetable(r.Context(), callerRole(r), claims.Sub)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
