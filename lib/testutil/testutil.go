package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"consumelog-backend/lib/telemetry"

	"github.com/mazen160/go-random"

	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dbpath := ":memory:"
	if params.DbPath != "" {
		dbpath = params.DbPath
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	if params.DbSchema != "" {
		_, err = sqlite.Exec(params.DbSchema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}

	return ServiceResult{
		DB: sqlite,
	}, cleanup
}

// RandomOrigin generates a unique plausible origin url for tests.
func RandomOrigin(t testing.TB, host string) string {
	slug, err := random.String(8)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("https://%s/subject/%s/", host, strings.ToLower(slug))
}
