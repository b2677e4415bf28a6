package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate добавляет блокировку строки SELECT ... FOR UPDATE.
// SQLite не поддерживает блокировки строк (писатель там всегда один),
// поэтому для него запрос остаётся как есть — тесты на in-memory базе
// проходят, а в проде конкурирующие мутации одной брони сериализуются.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
