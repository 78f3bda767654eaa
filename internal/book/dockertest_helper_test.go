package book

import (
	"testing"

	"github.com/ory/dockertest/v3"
)

// dockerPool returns a dockertest pool or skips the test when Docker is not reachable.
func dockerPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker-backed test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	return pool
}

func purgeOnCleanup(t *testing.T, pool *dockertest.Pool, resource *dockertest.Resource) {
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge resource: %v", err)
		}
	})
}
