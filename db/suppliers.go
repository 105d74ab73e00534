package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"sourcing/models"
)

const supplierColumns = `id, name, contact_email, contact_phone, created_at, updated_at`

// FindOrCreateSupplier ищет поставщика по имени без учета регистра, создает если нет.
// При параллельной вставке перечитывает уже созданную строку
func (s *Storage) FindOrCreateSupplier(ctx context.Context, name string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSupplierNameEmpty
	}

	sup, err := s.supplierByName(ctx, name)
	if err == nil {
		return sup, nil
	}
	if !errors.Is(err, ErrSupplierNotFound) {
		return nil, err
	}

	sup, err = s.insertSupplier(ctx, name, nil, nil)
	if err == nil {
		return sup, nil
	}
	if !errors.Is(err, ErrSupplierExists) {
		return nil, err
	}

	log.Debug().Str("supplier", name).Msg("supplier created concurrently, re-reading")
	return s.supplierByName(ctx, name)
}

// CreateSupplier создает поставщика, дубликат имени дает ErrSupplierExists
func (s *Storage) CreateSupplier(ctx context.Context, sup *models.Supplier) error {
	sup.Name = strings.TrimSpace(sup.Name)
	created, err := s.insertSupplier(ctx, sup.Name, sup.ContactEmail, sup.ContactPhone)
	if err != nil {
		return err
	}
	*sup = *created
	return nil
}

// GetSupplier для неположительного id сразу возвращает ErrSupplierNotFound
func (s *Storage) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	if id <= 0 {
		return nil, ErrSupplierNotFound
	}
	sup := &models.Supplier{}
	err := s.db.GetContext(ctx, sup, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return sup, nil
}

func (s *Storage) ListSuppliers(ctx context.Context, limit, offset int) ([]models.Supplier, error) {
	suppliers := []models.Supplier{}
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY LOWER(name) ASC, id ASC LIMIT $1 OFFSET $2`
	if err := s.db.SelectContext(ctx, &suppliers, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// DeleteSupplier возвращает ErrSupplierInUse, пока на поставщика ссылаются предложения или заказы
func (s *Storage) DeleteSupplier(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrSupplierNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return ErrSupplierInUse
	}
	if err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	if n == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

func (s *Storage) supplierByName(ctx context.Context, name string) (*models.Supplier, error) {
	sup := &models.Supplier{}
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE LOWER(name) = LOWER($1) LIMIT 1`
	err := s.db.GetContext(ctx, sup, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find supplier %q: %w", name, err)
	}
	return sup, nil
}

func (s *Storage) insertSupplier(ctx context.Context, name string, email, phone *string) (*models.Supplier, error) {
	sup := &models.Supplier{}
	query := `
        INSERT INTO suppliers (name, contact_email, contact_phone)
        VALUES ($1, $2, $3)
        RETURNING ` + supplierColumns
	err := s.db.GetContext(ctx, sup, query, name, email, phone)
	if isUniqueViolation(err) {
		return nil, ErrSupplierExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert supplier %q: %w", name, err)
	}
	return sup, nil
}
