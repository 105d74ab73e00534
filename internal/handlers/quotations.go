package handlers

import (
	"net/http"

	"sourcing/internal/quotation"
	"sourcing/internal/respond"
)

type analyzeRequest struct {
	Quotations []quotation.Quotation `json:"quotations"`
}

// AnalyzeQuotationsHandler ранжирует котировки, в БД ничего не сохраняет
func (h *Handler) AnalyzeQuotationsHandler(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Quotations) == 0 {
		respond.Error(w, http.StatusBadRequest, "quotations must be a non-empty array")
		return
	}
	for _, q := range req.Quotations {
		if q == nil {
			respond.Error(w, http.StatusBadRequest, "each quotation must be an object")
			return
		}
	}

	respond.JSON(w, http.StatusOK, quotation.Analyze(req.Quotations))
}
