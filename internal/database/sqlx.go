package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// NewSQLX wraps the connection pool owned by gorm in an sqlx handle for
// hand-written read queries. driverName selects the bind style used by Rebind.
func NewSQLX(db *gorm.DB, driverName string) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
