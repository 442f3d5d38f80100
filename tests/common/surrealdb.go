package common

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bobmcallan/folio/internal/common"
)

const (
	surrealImage     = "surrealdb/surrealdb:v3.0.0"
	surrealNamespace = "folio_test"
)

var (
	surrealOnce    sync.Once
	surrealAddress string
	surrealErr     error
)

// DockerEnabled reports whether container-backed tests should run.
func DockerEnabled() bool {
	return os.Getenv("FOLIO_TEST_DOCKER") == "true"
}

// SurrealDBConfig returns connection settings for a fresh database in a
// shared SurrealDB container, started once per test binary. The test is
// skipped unless FOLIO_TEST_DOCKER=true; FOLIO_TEST_SURREALDB_IMAGE picks
// the image.
func SurrealDBConfig(t *testing.T) common.SurrealDBConfig {
	t.Helper()
	if !DockerEnabled() {
		t.Skip("set FOLIO_TEST_DOCKER=true to run SurrealDB tests")
	}

	surrealOnce.Do(func() {
		surrealAddress, surrealErr = startSurrealDB(context.Background())
	})
	if surrealErr != nil {
		t.Fatalf("SurrealDB container: %v", surrealErr)
	}

	// database names may not contain "/"
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return common.SurrealDBConfig{
		Address:   surrealAddress,
		Username:  "root",
		Password:  "root",
		Namespace: surrealNamespace,
		Database:  fmt.Sprintf("t_%s_%d", name, time.Now().UnixNano()%100000),
	}
}

// startSurrealDB runs the container and returns its RPC address. The
// container lives until the test binary exits.
func startSurrealDB(ctx context.Context) (string, error) {
	image := os.Getenv("FOLIO_TEST_SURREALDB_IMAGE")
	if image == "" {
		image = surrealImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start %s: %w", image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "8000/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()), nil
}
