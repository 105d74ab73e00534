package handlers

import (
	"context"

	"sourcing/db"
	"sourcing/models"
)

// StorageInterface описывает методы *db.Storage, нужные обработчикам
type StorageInterface interface {
	FindOrCreateSupplier(ctx context.Context, name string) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, sup *models.Supplier) error
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, limit, offset int) ([]models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	CreateEvent(ctx context.Context, e *models.RfxEvent) error
	GetEvent(ctx context.Context, id int64) (*models.RfxEvent, error)
	ListEvents(ctx context.Context, status *models.EventStatus, limit, offset int) ([]models.RfxEventSummary, error)
	UpdateEventStatus(ctx context.Context, id int64, to models.EventStatus) (*models.RfxEvent, error)

	CreateResponse(ctx context.Context, r *models.RfxResponse) error
	ListResponses(ctx context.Context, rfxID int64) ([]models.RfxResponse, error)

	AwardResponse(ctx context.Context, in db.AwardInput) (*models.AwardResult, error)
	GetPurchaseOrderByRequest(ctx context.Context, requestID int64) (*models.PurchaseOrder, error)
}

var _ StorageInterface = (*db.Storage)(nil)
