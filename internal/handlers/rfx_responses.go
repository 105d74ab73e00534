package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"

	"sourcing/internal/respond"
	"sourcing/models"
)

type submitResponseRequest struct {
	SupplierName string          `json:"supplier_name"`
	BidAmount    json.RawMessage `json:"bid_amount"`
	Notes        *string         `json:"notes"`
	ResponseData models.RawJSON  `json:"response_data"`
}

var errBidNotNumber = errors.New("bid_amount must be a number")

// parseBidAmount принимает число или числовую строку. Отсутствие, null и "" означают без цены
// Отрицательные значения отсекает ограничение в БД
func parseBidAmount(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errBidNotNumber
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(raw)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errBidNotNumber
	}
	return &v, nil
}

// SubmitResponseHandler принимает предложение поставщика
func (h *Handler) SubmitResponseHandler(w http.ResponseWriter, r *http.Request) {
	rfxID, err := pathID(r, "rfxId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req submitResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	supplierName := strings.TrimSpace(req.SupplierName)
	if supplierName == "" {
		respond.Error(w, http.StatusBadRequest, "supplier_name is required")
		return
	}
	bid, err := parseBidAmount(req.BidAmount)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.Store.GetEvent(r.Context(), rfxID)
	if err != nil {
		writeStoreError(w, r, err, "get event")
		return
	}
	if !event.Status.AcceptsResponses() {
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("rfx event is %s and no longer accepts responses", event.Status))
		return
	}
	if event.Expired(h.Now()) {
		respond.Error(w, http.StatusBadRequest, "rfx event due date has passed")
		return
	}

	supplier, err := h.Store.FindOrCreateSupplier(r.Context(), supplierName)
	if err != nil {
		writeStoreError(w, r, err, "resolve supplier")
		return
	}

	actor := actorID(r)
	resp := &models.RfxResponse{
		RfxID:        rfxID,
		RequestID:    event.RequestID,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		SubmittedBy:  &actor,
		BidAmount:    bid,
		Notes:        req.Notes,
		ResponseData: req.ResponseData,
	}
	if err := h.Store.CreateResponse(r.Context(), resp); err != nil {
		writeStoreError(w, r, err, "create response")
		return
	}
	h.Metrics.ResponseSubmitted()

	hlog.FromRequest(r).Info().
		Int64("rfx_id", rfxID).
		Int64("response_id", resp.ID).
		Int64("supplier_id", supplier.ID).
		Msg("rfx response submitted")
	respond.JSON(w, http.StatusCreated, resp)
}

// ListResponsesHandler возвращает предложения по событию
func (h *Handler) ListResponsesHandler(w http.ResponseWriter, r *http.Request) {
	rfxID, err := pathID(r, "rfxId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.Store.GetEvent(r.Context(), rfxID); err != nil {
		writeStoreError(w, r, err, "get event")
		return
	}

	responses, err := h.Store.ListResponses(r.Context(), rfxID)
	if err != nil {
		writeStoreError(w, r, err, "list responses")
		return
	}
	respond.JSON(w, http.StatusOK, responses)
}
