package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// Сущность Поставщика, имя уникально без учета регистра
type Supplier struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail *string   `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Сущность События закупки (RFQ, RFP, ...), может быть привязана к заявке
type RfxEvent struct {
	ID          int64       `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	RfxType     RfxType     `db:"rfx_type" json:"rfx_type"`
	Description *string     `db:"description" json:"description,omitempty"`
	RequestID   *int64      `db:"request_id" json:"request_id"`
	DueDate     *time.Time  `db:"due_date" json:"due_date,omitempty"`
	Status      EventStatus `db:"status" json:"status"`
	CreatedBy   int64       `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Expired сообщает, прошел ли срок события
func (e *RfxEvent) Expired(now time.Time) bool {
	return e.DueDate != nil && e.DueDate.Before(now)
}

// Событие с агрегатами по предложениям
type RfxEventSummary struct {
	RfxEvent
	ResponseCount   int        `db:"response_count" json:"response_count"`
	LastSubmittedAt *time.Time `db:"last_submitted_at" json:"last_submitted_at"`
}

// Сущность Предложения поставщика
type RfxResponse struct {
	ID           int64          `db:"id" json:"id"`
	RfxID        int64          `db:"rfx_id" json:"rfx_id"`
	RequestID    *int64         `db:"request_id" json:"request_id"`
	SupplierID   int64          `db:"supplier_id" json:"supplier_id"`
	SupplierName string         `db:"supplier_name" json:"supplier_name,omitempty"`
	SubmittedBy  *int64         `db:"submitted_by" json:"submitted_by,omitempty"`
	BidAmount    *float64       `db:"bid_amount" json:"bid_amount"`
	Notes        *string        `db:"notes" json:"notes,omitempty"`
	ResponseData RawJSON        `db:"response_data" json:"response_data,omitempty"`
	Status       ResponseStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Сущность Заказа, не больше одного на заявку
type PurchaseOrder struct {
	ID            int64     `db:"id" json:"id"`
	RequestID     int64     `db:"request_id" json:"request_id"`
	RfxID         *int64    `db:"rfx_id" json:"rfx_id"`
	RfxResponseID *int64    `db:"rfx_response_id" json:"rfx_response_id"`
	SupplierID    *int64    `db:"supplier_id" json:"supplier_id"`
	PONumber      string    `db:"po_number" json:"po_number"`
	Status        string    `db:"status" json:"status"`
	Currency      string    `db:"currency" json:"currency"`
	TotalAmount   *float64  `db:"total_amount" json:"total_amount"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy     *int64    `db:"created_by" json:"created_by,omitempty"`
	IssuedAt      time.Time `db:"issued_at" json:"issued_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Значения заказа по умолчанию
const (
	POStatusIssued  = "issued"
	DefaultCurrency = "USD"
)

// Статусы закупки в заявке
const (
	SourcingPOIssued = "po_issued"
)

// Заявка (из БД, для связи)
type RequestAward struct {
	ID                   int64      `db:"id" json:"id"`
	AwardedSupplierID    *int64     `db:"awarded_supplier_id" json:"awarded_supplier_id"`
	AwardedRfxID         *int64     `db:"awarded_rfx_id" json:"awarded_rfx_id"`
	AwardedRfxResponseID *int64     `db:"awarded_rfx_response_id" json:"awarded_rfx_response_id"`
	PurchaseOrderID      *int64     `db:"purchase_order_id" json:"purchase_order_id"`
	PurchaseOrderNumber  *string    `db:"purchase_order_number" json:"purchase_order_number"`
	SourcingStatus       *string    `db:"sourcing_status" json:"sourcing_status"`
	AwardedAt            *time.Time `db:"awarded_at" json:"awarded_at"`
	POIssuedAt           *time.Time `db:"po_issued_at" json:"po_issued_at"`
}

// AwardResult результат успешного award
type AwardResult struct {
	PurchaseOrder     PurchaseOrder `json:"purchase_order"`
	AwardedResponseID int64         `json:"awarded_response_id"`
	Request           RequestAward  `json:"request"`
}

// RawJSON документ JSON для колонки JSONB
type RawJSON []byte

// Value отдает документ строкой, иначе lib/pq закодирует []byte как bytea
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("models: cannot scan %T into RawJSON", src)
	}
	return nil
}

func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *RawJSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("models: UnmarshalJSON on nil RawJSON")
	}
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}
