//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shraw06/docsplusplus/internal/audit"
	"github.com/shraw06/docsplusplus/pkg/config"
)

// TestLogPersistsRecordAgainstRealPostgres exercises the golang-migrate path
// of New (skipped by the sqlite-backed unit tests, which use AutoMigrate
// instead) against a real PostgreSQL server.
func TestLogPersistsRecordAgainstRealPostgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("docsplusplus_audit_test"),
		postgres.WithUsername("docsplusplus"),
		postgres.WithPassword("docsplusplus"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://docsplusplus:docsplusplus@%s:%s/docsplusplus_audit_test?sslmode=disable",
		host, port.Port())

	l, err := audit.New(config.AuditConfig{
		Enabled:       true,
		Driver:        "postgres",
		DSN:           dsn,
		QueueCapacity: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Log(audit.NewRecord("alice", audit.ActionGrant, "doc.txt", "bob", "read", "granted"))
	l.Close()

	// Reopening confirms the schema migration is idempotent (ErrNoChange).
	l2, err := audit.New(config.AuditConfig{
		Enabled:       true,
		Driver:        "postgres",
		DSN:           dsn,
		QueueCapacity: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, l2)
	l2.Close()
}
