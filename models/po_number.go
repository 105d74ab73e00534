package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewPONumber генерирует номер заказа: PO-<мс epoch>-<5 случайных цифр>.
// Уникальность гарантирует ограничение purchase_orders.po_number
func NewPONumber(now time.Time) string {
	return fmt.Sprintf("PO-%d-%05d", now.UnixMilli(), rand.IntN(100000))
}
