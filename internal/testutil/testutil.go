package testutil

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/migrate"
)

var dbSeq atomic.Int64

// OpenDB opens a fresh in-memory SQLite database with every migration applied.
// The database is closed (and discarded) when the test ends.
func OpenDB(t *testing.T) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:" + name + "_" + strconv.FormatInt(dbSeq.Add(1), 10) + "?mode=memory&cache=shared",
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := migrate.Up(context.Background(), nil, client); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return client
}
