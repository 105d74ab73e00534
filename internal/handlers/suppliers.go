package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sourcing/internal/respond"
	"sourcing/models"
)

const (
	defaultSupplierLimit  = 50
	maxSupplierLimit      = 200
	maxSupplierNameLength = 255
)

type createSupplierRequest struct {
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

func validateSupplierRequest(req *createSupplierRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxSupplierNameLength {
		return errors.New("name is required and max length 255")
	}
	if req.ContactEmail != nil && *req.ContactEmail != "" {
		if _, err := mail.ParseAddress(*req.ContactEmail); err != nil {
			return errors.New("contact_email is not a valid address")
		}
	}
	return nil
}

// ListSuppliersHandler возвращает список поставщиков
func (h *Handler) ListSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r, defaultSupplierLimit, maxSupplierLimit)
	suppliers, err := h.Store.ListSuppliers(r.Context(), params.Limit, params.Offset)
	if err != nil {
		writeStoreError(w, r, err, "list suppliers")
		return
	}
	respond.JSON(w, http.StatusOK, suppliers)
}

// CreateSupplierHandler обрабатывает POST /api/suppliers
func (h *Handler) CreateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateSupplierRequest(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sup := &models.Supplier{Name: req.Name, ContactEmail: req.ContactEmail, ContactPhone: req.ContactPhone}
	if err := h.Store.CreateSupplier(r.Context(), sup); err != nil {
		writeStoreError(w, r, err, "create supplier")
		return
	}
	respond.JSON(w, http.StatusCreated, sup)
}

// GetSupplierHandler возвращает поставщика по id
// Неположительный числовой id дает 404, а не 400
func (h *Handler) GetSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "supplierId"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid supplierId")
		return
	}
	sup, err := h.Store.GetSupplier(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "get supplier")
		return
	}
	respond.JSON(w, http.StatusOK, sup)
}

// DeleteSupplierHandler удаляет поставщика
func (h *Handler) DeleteSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "supplierId")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.DeleteSupplier(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
