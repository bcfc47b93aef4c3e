// Package integration provides integration tests backed by a real
// PostgreSQL instance started through testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB bundles a throwaway PostgreSQL container with a migrated GORM
// connection. Each call to NewTestDB starts a fresh container so tests
// never observe each other's data.
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container *tcpostgres.PostgresContainer
	DSN       string

	t *testing.T
}

// NewTestDB starts a PostgreSQL container, connects to it and applies all
// migrations. The container and connections are torn down via t.Cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storelink_test"),
		tcpostgres.WithUsername("storelink"),
		tcpostgres.WithPassword("storelink"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, sqlDB, err := connectToDatabase(dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
		_ = container.Terminate(context.Background())
	})

	return testDB
}

func connectToDatabase(dsn string) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB, nil
}

func runMigrations(sqlDB *sql.DB) error {
	migrationsPath, err := findMigrationsPath()
	if err != nil {
		return err
	}

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// findMigrationsPath walks up from this file until it finds the
// migrations directory at the repository root.
func findMigrationsPath() (string, error) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("cannot determine caller path")
	}

	dir := filepath.Dir(thisFile)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		dir = filepath.Dir(dir)
	}

	return "", fmt.Errorf("migrations directory not found")
}

// CleanTables truncates all application tables so a test case can start
// from an empty database without restarting the container.
func (d *TestDB) CleanTables() {
	d.t.Helper()

	var tables []string
	err := d.DB.Raw(
		"SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename != 'schema_migrations'",
	).Scan(&tables).Error
	if err != nil {
		d.t.Fatalf("failed to list tables: %v", err)
	}

	for _, table := range tables {
		if err := d.DB.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			d.t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
