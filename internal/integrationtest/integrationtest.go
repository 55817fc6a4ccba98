// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	// Registers the postgres database/sql driver.
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// Driver is the database/sql driver name used by the integration tests.
const Driver = "postgres"

// StartPostgres runs a disposable Postgres container with the ledger schema applied.
//
// It returns the connection string and a function that terminates the container. It takes no
// *testing.T so it can be called from TestMain.
func StartPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("root"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", nil, err
	}

	terminate := func() {
		_ = container.Terminate(ctx)
	}

	source, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, err
	}

	migrationURL, err := MigrationURL()
	if err != nil {
		terminate()
		return "", nil, err
	}

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		terminate()
		return "", nil, err
	}
	defer db.Close()

	if err := dbpkg.Migrate(db, migrationURL); err != nil {
		terminate()
		return "", nil, err
	}

	return source, terminate, nil
}

// MigrationURL locates db/migration at the module root as a file:// URL.
func MigrationURL() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "file://" + filepath.ToSlash(filepath.Join(dir, "db", "migration")), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}

		dir = parent
	}
}

// Flush flushes all ledger tables without droping and restarts account numbering.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name <> 'schema_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(Driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
