package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"sourcing/internal/respond"
	"sourcing/models"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
	maxTitleLength    = 255
)

type createEventRequest struct {
	Title       string  `json:"title"`
	RfxType     string  `json:"rfx_type"`
	Description *string `json:"description"`
	RequestID   *int64  `json:"request_id"`
	DueDate     *string `json:"due_date"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// ListEventsHandler возвращает список событий, неизвестный статус в фильтре игнорируется
func (h *Handler) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r, defaultEventLimit, maxEventLimit)

	var filter *models.EventStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if st, ok := models.ParseEventStatus(raw); ok {
			filter = &st
		} else {
			hlog.FromRequest(r).Debug().Str("status", raw).Msg("ignoring unknown status filter")
		}
	}

	events, err := h.Store.ListEvents(r.Context(), filter, params.Limit, params.Offset)
	if err != nil {
		writeStoreError(w, r, err, "list events")
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

// CreateEventHandler обрабатывает POST /api/rfx-portal
func (h *Handler) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := validateCreateEvent(&req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	event.CreatedBy = actorID(r)

	if err := h.Store.CreateEvent(r.Context(), event); err != nil {
		writeStoreError(w, r, err, "create event")
		return
	}
	respond.JSON(w, http.StatusCreated, event)
}

// validateCreateEvent проверяет поля и собирает событие для вставки
func validateCreateEvent(req *createEventRequest) (*models.RfxEvent, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, errors.New("title is required and max length 255")
	}
	rfxType, ok := models.ParseRfxType(req.RfxType)
	if !ok {
		return nil, errors.New("rfx_type must be one of RFQ, RFP, RFI, ITT, RFT")
	}
	if req.RequestID != nil && *req.RequestID <= 0 {
		return nil, errors.New("request_id must be positive")
	}

	event := &models.RfxEvent{
		Title:       title,
		RfxType:     rfxType,
		Description: req.Description,
		RequestID:   req.RequestID,
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, errors.New("due_date must be a valid date")
		}
		event.DueDate = &due
	}
	return event, nil
}

// parseDate принимает RFC 3339 и простые даты YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// GetEventHandler возвращает событие по id
func (h *Handler) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	rfxID, err := pathID(r, "rfxId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := h.Store.GetEvent(r.Context(), rfxID)
	if err != nil {
		writeStoreError(w, r, err, "get event")
		return
	}
	respond.JSON(w, http.StatusOK, event)
}

// UpdateEventStatusHandler меняет статус события
// Статус awarded ставится только через award
func (h *Handler) UpdateEventStatusHandler(w http.ResponseWriter, r *http.Request) {
	rfxID, err := pathID(r, "rfxId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := models.ParseEventStatus(req.Status)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "status must be one of draft, open, closed, awarded, cancelled")
		return
	}
	if status == models.EventAwarded {
		respond.Error(w, http.StatusBadRequest, "events are awarded through the award endpoint")
		return
	}

	event, err := h.Store.UpdateEventStatus(r.Context(), rfxID, status)
	if err != nil {
		writeStoreError(w, r, err, "update event status")
		return
	}
	hlog.FromRequest(r).Info().Int64("rfx_id", rfxID).Str("status", string(status)).Msg("rfx event status updated")
	respond.JSON(w, http.StatusOK, event)
}
