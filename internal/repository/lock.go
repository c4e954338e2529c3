package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withUpdateLock applies a row-level update lock on dialects that support
// it. SQLite serializes writers on its own and rejects FOR UPDATE, so the
// clause is skipped there.
func withUpdateLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
