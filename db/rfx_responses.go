package db

import (
	"context"
	"fmt"

	"sourcing/models"
)

// CreateResponse сохраняет предложение. Поставщика и request_id события
// заполняет вызывающий код
func (s *Storage) CreateResponse(ctx context.Context, r *models.RfxResponse) error {
	r.Status = models.ResponseSubmitted
	query := `
        INSERT INTO rfx_responses
            (rfx_id, request_id, supplier_id, submitted_by, bid_amount, notes, response_data, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, query,
		r.RfxID, r.RequestID, r.SupplierID, r.SubmittedBy, r.BidAmount, r.Notes, r.ResponseData, r.Status).
		Scan(&r.ID, &r.CreatedAt)
	switch {
	case isCheckViolation(err), isNumericOutOfRange(err):
		return ErrInvalidBidAmount
	case isForeignKeyViolation(err):
		return ErrEventNotFound
	case err != nil:
		return fmt.Errorf("create rfx response for event %d: %w", r.RfxID, err)
	}
	return nil
}

// ListResponses возвращает предложения по событию вместе с именами поставщиков
func (s *Storage) ListResponses(ctx context.Context, rfxID int64) ([]models.RfxResponse, error) {
	query := `
        SELECT r.id, r.rfx_id, r.request_id, r.supplier_id, s.name AS supplier_name, r.submitted_by,
               r.bid_amount, r.notes, r.response_data, r.status, r.created_at
        FROM rfx_responses r
        JOIN suppliers s ON s.id = r.supplier_id
        WHERE r.rfx_id = $1
        ORDER BY r.created_at DESC, r.id DESC`
	responses := []models.RfxResponse{}
	if err := s.db.SelectContext(ctx, &responses, query, rfxID); err != nil {
		return nil, fmt.Errorf("list responses for event %d: %w", rfxID, err)
	}
	return responses, nil
}
