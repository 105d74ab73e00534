package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sourcing/models"
)

const eventColumns = `id, title, rfx_type, description, request_id, due_date, status, created_by, created_at, updated_at`

// CreateEvent создает событие в статусе open. Несуществующий request_id дает ErrRequestNotFound
func (s *Storage) CreateEvent(ctx context.Context, e *models.RfxEvent) error {
	e.Status = models.EventOpen
	query := `
        INSERT INTO rfx_events
            (title, rfx_type, description, request_id, due_date, status, created_by)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + eventColumns
	err := s.db.GetContext(ctx, e, query,
		e.Title, e.RfxType, e.Description, e.RequestID, e.DueDate, e.Status, e.CreatedBy)
	if isForeignKeyViolation(err) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("create rfx event: %w", err)
	}
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (*models.RfxEvent, error) {
	e := &models.RfxEvent{}
	err := s.db.GetContext(ctx, e, `SELECT `+eventColumns+` FROM rfx_events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rfx event %d: %w", id, err)
	}
	return e, nil
}

// ListEvents возвращает события (новые первыми) с агрегатами по предложениям. nil статус означает все
func (s *Storage) ListEvents(ctx context.Context, status *models.EventStatus, limit, offset int) ([]models.RfxEventSummary, error) {
	query := `
        SELECT e.id, e.title, e.rfx_type, e.description, e.request_id, e.due_date, e.status,
               e.created_by, e.created_at, e.updated_at,
               COUNT(r.id) AS response_count,
               MAX(r.created_at) AS last_submitted_at
        FROM rfx_events e
        LEFT JOIN rfx_responses r ON r.rfx_id = e.id
        WHERE ($1::text IS NULL OR e.status = $1)
        GROUP BY e.id
        ORDER BY e.created_at DESC, e.id DESC
        LIMIT $2 OFFSET $3`

	var filter *string
	if status != nil {
		v := string(*status)
		filter = &v
	}

	events := []models.RfxEventSummary{}
	if err := s.db.SelectContext(ctx, &events, query, filter, limit, offset); err != nil {
		return nil, fmt.Errorf("list rfx events: %w", err)
	}
	return events, nil
}

// UpdateEventStatus переводит событие в статус `to`, если таблица переходов это разрешает.
// Проверка и запись выполняются одним запросом
func (s *Storage) UpdateEventStatus(ctx context.Context, id int64, to models.EventStatus) (*models.RfxEvent, error) {
	sources := models.TransitionSources(to)
	allowed := make([]string, len(sources))
	for i, st := range sources {
		allowed[i] = string(st)
	}

	e := &models.RfxEvent{}
	query := `
        UPDATE rfx_events
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = ANY($3)
        RETURNING ` + eventColumns
	err := s.db.GetContext(ctx, e, query, to, id, pq.Array(allowed))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update rfx event %d status: %w", id, err)
	}

	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, to)
}
