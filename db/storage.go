package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"sourcing/models"
)

var (
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrSupplierNameEmpty = errors.New("supplier name is required")
	ErrSupplierExists    = errors.New("supplier with this name already exists")
	ErrSupplierInUse     = errors.New("supplier is referenced by responses or purchase orders")
	ErrEventNotFound     = errors.New("rfx event not found")
	ErrResponseNotFound  = errors.New("rfx response not found")
	ErrRequestNotFound   = errors.New("request not found")
	ErrInvalidBidAmount  = errors.New("bid_amount must not be negative")

	ErrResponseUnlinked    = errors.New("response is not linked to a request")
	ErrEventCancelled      = errors.New("rfx event is cancelled")
	ErrPurchaseOrderExists = errors.New("request already has a purchase order")
	ErrPurchaseOrderAbsent = errors.New("purchase order not found")
	ErrPONumberTaken       = errors.New("po_number already in use")
)

// Storage хранилище на Postgres
type Storage struct {
	db  *sqlx.DB
	now func() time.Time
	// newPONumber подменяется в тестах для коллизий
	newPONumber func(time.Time) string
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, now: time.Now, newPONumber: models.NewPONumber}
}

// Ping проверяет соединение с БД
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// inTx выполняет fn в транзакции, при ошибке откатывает
func (s *Storage) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Str("op", op).Msg("panic in transaction, rolling back")
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("op", op).Msg("failed to rollback transaction after panic")
			}
			panic(p)
		}
		if err != nil {
			log.Debug().Err(err).Str("op", op).Msg("transaction failed, rolling back")
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Str("op", op).Msg("failed to rollback transaction")
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			log.Error().Err(cErr).Str("op", op).Msg("failed to commit transaction")
			err = fmt.Errorf("%s: commit transaction: %w", op, cErr)
		}
	}()

	return fn(tx)
}

// pgCode возвращает SQLSTATE ошибки Postgres или ""
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pgCode(err) == pgerrcode.CheckViolation
}

func isNumericOutOfRange(err error) bool {
	return pgCode(err) == pgerrcode.NumericValueOutOfRange
}

// constraintName возвращает имя нарушенного ограничения, если драйвер его передал
func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
