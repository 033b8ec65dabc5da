package ledger

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-bot/internal"
	categoryDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/category"
	compensationDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/compensation"
	employeeDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/employee"
	expenseDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/expense"
	projectDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/project"
)

// OpenDatabase connects gorm and sqlx to the same pool. Postgres goes
// through the pgx stdlib driver; sqlite is opened by the gorm driver.
func OpenDatabase(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch cfg.Driver {
	case internal.DatabaseDriverPostgres, "":
		const driver = "pgx"
		sqlDB, err := sqlx.Connect(driver, cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), gormCfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
		}
		return gdb, sqlDB, nil

	case internal.DatabaseDriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Source), gormCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		raw, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		// sqlite allows one writer at a time.
		raw.SetMaxOpenConns(1)
		return gdb, sqlx.NewDb(raw, "sqlite3"), nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Models lists the row types owned by the ledger.
func Models() []interface{} {
	return []interface{}{
		&employeeDatamodel.Employee{},
		&expenseDatamodel.Expense{},
		&compensationDatamodel.Request{},
		&projectDatamodel.Project{},
		&categoryDatamodel.ExpenseCategory{},
	}
}

// AutoMigrate creates the ledger tables from the row models. Postgres uses the
// goose migrations instead.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}
