package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"sourcing/db"
	"sourcing/internal/auth"
	"sourcing/internal/metrics"
	"sourcing/internal/respond"
	"sourcing/models"
)

// maxBodyBytes ограничивает размер тела запроса (1 МБ)
const maxBodyBytes = 1 << 20

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store   StorageInterface
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// NewHandler создает новый Handler, m может быть nil
func NewHandler(store StorageInterface, m *metrics.Metrics) *Handler {
	return &Handler{Store: store, Metrics: m, Now: time.Now}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, при ошибке берет значения по умолчанию
func parsePaginationParams(r *http.Request, defaultLimit, maxLimit int) PaginationParams {
	params := PaginationParams{Limit: defaultLimit}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= maxLimit {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

var errEmptyBody = errors.New("request body is required")

// decodeJSON читает JSON тело с ограничением размера
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case errors.As(err, &tooLarge):
			return errors.New("request body too large")
		default:
			return errors.New("invalid JSON format")
		}
	}
	return nil
}

// pathID парсит положительный целый параметр пути
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func actorID(r *http.Request) int64 {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

// storeErrorStatus сопоставляет ошибки хранилища с HTTP статусами
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, db.ErrSupplierNotFound),
		errors.Is(err, db.ErrEventNotFound),
		errors.Is(err, db.ErrResponseNotFound),
		errors.Is(err, db.ErrRequestNotFound),
		errors.Is(err, db.ErrPurchaseOrderAbsent):
		return http.StatusNotFound
	case errors.Is(err, db.ErrSupplierExists),
		errors.Is(err, db.ErrSupplierInUse),
		errors.Is(err, db.ErrPONumberTaken):
		return http.StatusConflict
	case errors.Is(err, db.ErrSupplierNameEmpty),
		errors.Is(err, db.ErrInvalidBidAmount),
		errors.Is(err, db.ErrResponseUnlinked),
		errors.Is(err, db.ErrEventCancelled),
		errors.Is(err, db.ErrPurchaseOrderExists),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeStoreError отвечает нужным статусом. Детали 5xx только пишутся в лог
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	code := storeErrorStatus(err)
	if code == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("op", op).Msg("storage failure")
		respond.Error(w, code, "internal server error")
		return
	}
	respond.Error(w, code, err.Error())
}
