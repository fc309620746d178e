package database

import (
	"testing"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/database"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/test/util"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// NewTestClient creates a migrated test database client in an isolated
// schema. In CI (when CI_DATABASE_URL is set) it connects to the external
// PostgreSQL service container; locally it uses a shared testcontainer
// started once per package. Schema and connections are cleaned up when the
// test ends.
func NewTestClient(t *testing.T) *database.Client {
	t.Helper()

	db := util.SetupTestDatabase(t)
	return &database.Client{DB: sqlx.NewDb(db, "pgx")}
}
