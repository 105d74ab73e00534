package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"sourcing/models"
)

// poNumberAttempts ограничивает число повторных генераций номера заказа
const poNumberAttempts = 5

const purchaseOrderColumns = `id, request_id, rfx_id, rfx_response_id, supplier_id, po_number, status, currency,
               total_amount, notes, created_by, issued_at, created_at, updated_at`

const requestAwardColumns = `id, awarded_supplier_id, awarded_rfx_id, awarded_rfx_response_id, purchase_order_id,
               purchase_order_number, sourcing_status, awarded_at, po_issued_at`

// AwardInput задает выигравшее предложение и необязательные поля заказа
type AwardInput struct {
	RfxID      int64
	ResponseID int64
	PONumber   string
	Notes      *string
	ActorID    int64
}

// awardTarget это заблокированная строка предложения вместе с событием
type awardTarget struct {
	ResponseID        int64                 `db:"id"`
	SupplierID        int64                 `db:"supplier_id"`
	BidAmount         *float64              `db:"bid_amount"`
	Status            models.ResponseStatus `db:"status"`
	ResponseRequestID *int64                `db:"request_id"`
	EventRequestID    *int64                `db:"event_request_id"`
	EventStatus       models.EventStatus    `db:"event_status"`
}

// AwardResponse присуждает победу предложению и создает заказ в одной транзакции.
// Блокировки строк предложения, события и заявки упорядочивают конкурирующие вызовы,
// а проверка существующего заказа не дает создать второй.
func (s *Storage) AwardResponse(ctx context.Context, in AwardInput) (*models.AwardResult, error) {
	result := &models.AwardResult{AwardedResponseID: in.ResponseID}

	err := s.inTx(ctx, "award response", func(tx *sqlx.Tx) error {
		var target awardTarget
		err := tx.GetContext(ctx, &target, `
            SELECT r.id, r.supplier_id, r.bid_amount, r.status, r.request_id,
                   e.request_id AS event_request_id, e.status AS event_status
            FROM rfx_responses r
            JOIN rfx_events e ON e.id = r.rfx_id
            WHERE r.id = $1 AND r.rfx_id = $2
            FOR UPDATE`, in.ResponseID, in.RfxID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResponseNotFound
		}
		if err != nil {
			return fmt.Errorf("lock response %d: %w", in.ResponseID, err)
		}

		requestID := target.ResponseRequestID
		if requestID == nil {
			requestID = target.EventRequestID
		}
		if requestID == nil {
			return ErrResponseUnlinked
		}
		if target.EventStatus == models.EventCancelled {
			return ErrEventCancelled
		}

		var lockedID int64
		err = tx.GetContext(ctx, &lockedID, `SELECT id FROM requests WHERE id = $1 FOR UPDATE`, *requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("lock request %d: %w", *requestID, err)
		}

		var existing string
		err = tx.GetContext(ctx, &existing, `SELECT po_number FROM purchase_orders WHERE request_id = $1`, *requestID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrPurchaseOrderExists, existing)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check purchase order for request %d: %w", *requestID, err)
		}

		if !models.CanTransition(target.EventStatus, models.EventAwarded) {
			return fmt.Errorf("%w: event %s -> %s", models.ErrInvalidTransition, target.EventStatus, models.EventAwarded)
		}
		if !models.CanTransitionResponse(target.Status, models.ResponseAwarded) {
			return fmt.Errorf("%w: response %s -> %s", models.ErrInvalidTransition, target.Status, models.ResponseAwarded)
		}

		po := &models.PurchaseOrder{
			RequestID:     *requestID,
			RfxID:         &in.RfxID,
			RfxResponseID: &target.ResponseID,
			SupplierID:    &target.SupplierID,
			PONumber:      strings.TrimSpace(in.PONumber),
			Status:        models.POStatusIssued,
			Currency:      models.DefaultCurrency,
			TotalAmount:   target.BidAmount,
			Notes:         in.Notes,
			CreatedBy:     &in.ActorID,
		}
		if err := s.insertPurchaseOrder(ctx, tx, po); err != nil {
			return err
		}
		result.PurchaseOrder = *po

		_, err = tx.ExecContext(ctx, `
            UPDATE rfx_responses
            SET status = CASE WHEN id = $1 THEN $3 ELSE $4 END
            WHERE rfx_id = $2`,
			target.ResponseID, in.RfxID, models.ResponseAwarded, models.ResponseClosed)
		if err != nil {
			return fmt.Errorf("update response statuses for event %d: %w", in.RfxID, err)
		}

		_, err = tx.ExecContext(ctx, `
            UPDATE rfx_events
            SET status = $1, request_id = COALESCE(request_id, $2), updated_at = NOW()
            WHERE id = $3`,
			models.EventAwarded, *requestID, in.RfxID)
		if err != nil {
			return fmt.Errorf("mark event %d awarded: %w", in.RfxID, err)
		}

		err = tx.GetContext(ctx, &result.Request, `
            UPDATE requests
            SET awarded_supplier_id = $2,
                awarded_rfx_id = $3,
                awarded_rfx_response_id = $4,
                purchase_order_id = $5,
                purchase_order_number = $6,
                sourcing_status = $7,
                awarded_at = COALESCE(awarded_at, NOW()),
                po_issued_at = COALESCE(po_issued_at, NOW()),
                updated_at = NOW()
            WHERE id = $1
            RETURNING `+requestAwardColumns,
			*requestID, target.SupplierID, in.RfxID, target.ResponseID, po.ID, po.PONumber, models.SourcingPOIssued)
		if err != nil {
			return fmt.Errorf("update award fields on request %d: %w", *requestID, err)
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO request_logs (request_id, action, actor_id, comments)
            VALUES ($1, $2, $3, $4)`,
			*requestID, "rfx_awarded", in.ActorID,
			fmt.Sprintf("Awarded RFx response #%d and issued %s", target.ResponseID, po.PONumber))
		if err != nil {
			return fmt.Errorf("log award on request %d: %w", *requestID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("rfx_id", in.RfxID).
		Int64("response_id", in.ResponseID).
		Int64("request_id", result.Request.ID).
		Str("po_number", result.PurchaseOrder.PONumber).
		Msg("rfx response awarded")
	return result, nil
}

// insertPurchaseOrder вставляет заказ, генерируя номер если он не задан.
// Сгенерированный номер при коллизии генерируется заново, заданный дает ErrPONumberTaken.
func (s *Storage) insertPurchaseOrder(ctx context.Context, tx *sqlx.Tx, po *models.PurchaseOrder) error {
	generated := po.PONumber == ""
	query := `
        INSERT INTO purchase_orders
            (request_id, rfx_id, rfx_response_id, supplier_id, po_number, status, currency,
             total_amount, notes, created_by)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (po_number) DO NOTHING
        RETURNING ` + purchaseOrderColumns

	for attempt := 1; attempt <= poNumberAttempts; attempt++ {
		if generated {
			po.PONumber = s.newPONumber(s.now())
		}
		// sqlx заполняет nil указатели даже когда строки нет,
		// поэтому каждая попытка сканирует в новую структуру
		inserted := models.PurchaseOrder{}
		err := tx.GetContext(ctx, &inserted, query,
			po.RequestID, po.RfxID, po.RfxResponseID, po.SupplierID, po.PONumber, po.Status, po.Currency,
			po.TotalAmount, po.Notes, po.CreatedBy)
		switch {
		case err == nil:
			*po = inserted
			return nil
		case errors.Is(err, sql.ErrNoRows):
			if !generated {
				return fmt.Errorf("%w: %s", ErrPONumberTaken, po.PONumber)
			}
			log.Warn().Str("po_number", po.PONumber).Int("attempt", attempt).Msg("generated po_number collided, retrying")
		case isUniqueViolation(err) && constraintName(err) == "purchase_orders_request_id_key":
			return ErrPurchaseOrderExists
		default:
			return fmt.Errorf("insert purchase order for request %d: %w", po.RequestID, err)
		}
	}
	return fmt.Errorf("%w: gave up after %d generated numbers", ErrPONumberTaken, poNumberAttempts)
}

// GetPurchaseOrderByRequest возвращает заказ, выданный по заявке
func (s *Storage) GetPurchaseOrderByRequest(ctx context.Context, requestID int64) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{}
	err := s.db.GetContext(ctx, po, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE request_id = $1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPurchaseOrderAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase order for request %d: %w", requestID, err)
	}
	return po, nil
}
