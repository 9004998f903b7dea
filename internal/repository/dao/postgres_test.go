package dao

import (
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenplate/campus-client/internal/db"
)

// openPostgres starts a throwaway postgres container. It skips when -short is
// set or no docker daemon is reachable.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest.NewPool: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=greenplate",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=greenplate",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	url := fmt.Sprintf("postgres://greenplate:secret@%s/greenplate?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gdb *gorm.DB
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		var openErr error
		gdb, openErr = db.OpenPostgresWithURL(url)
		if openErr != nil {
			return openErr
		}
		sqlDB, openErr := gdb.DB()
		if openErr != nil {
			return openErr
		}
		return sqlDB.Ping()
	})
	require.NoError(t, err)
	require.NoError(t, InitTables(gdb))

	return gdb
}

func TestPostgres(t *testing.T) {
	gdb := openPostgres(t)

	suites := map[string]func(*testing.T, *gorm.DB){
		"cart":   runCartSuite,
		"orders": runOrderSuite,
		"deals":  runDealSuite,
	}
	for name, suite := range suites {
		require.NoError(t, gdb.Exec("TRUNCATE cart_lines, claim_orders, deals").Error)
		t.Run(name, func(t *testing.T) { suite(t, gdb) })
	}
}
