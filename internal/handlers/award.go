package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"sourcing/db"
	"sourcing/internal/metrics"
	"sourcing/internal/respond"
)

const maxPONumberLength = 64

type awardRequest struct {
	PONumber string  `json:"po_number"`
	Notes    *string `json:"notes"`
}

// AwardResponseHandler обрабатывает POST /api/rfx-portal/{rfxId}/responses/{responseId}/award
// Пустое тело допустимо, номер заказа тогда генерируется
func (h *Handler) AwardResponseHandler(w http.ResponseWriter, r *http.Request) {
	rfxID, err := pathID(r, "rfxId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	responseID, err := pathID(r, "responseId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req awardRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.PONumber = strings.TrimSpace(req.PONumber)
	if len(req.PONumber) > maxPONumberLength {
		respond.Error(w, http.StatusBadRequest, "po_number max length 64")
		return
	}

	result, err := h.Store.AwardResponse(r.Context(), db.AwardInput{
		RfxID:      rfxID,
		ResponseID: responseID,
		PONumber:   req.PONumber,
		Notes:      req.Notes,
		ActorID:    actorID(r),
	})
	if err != nil {
		if storeErrorStatus(err) == http.StatusInternalServerError {
			h.Metrics.ObserveAward(metrics.AwardFailed)
		} else {
			h.Metrics.ObserveAward(metrics.AwardRejected)
			hlog.FromRequest(r).Info().Err(err).Int64("rfx_id", rfxID).Int64("response_id", responseID).Msg("award rejected")
		}
		writeStoreError(w, r, err, "award response")
		return
	}

	h.Metrics.ObserveAward(metrics.AwardIssued)
	respond.JSON(w, http.StatusOK, result)
}

// GetRequestPurchaseOrderHandler возвращает заказ на закупку по заявке
func (h *Handler) GetRequestPurchaseOrderHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "requestId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	po, err := h.Store.GetPurchaseOrderByRequest(r.Context(), requestID)
	if err != nil {
		writeStoreError(w, r, err, "get purchase order")
		return
	}
	respond.JSON(w, http.StatusOK, po)
}
