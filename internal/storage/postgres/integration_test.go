//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("notifier_test"),
		tcpostgres.WithUsername("notifier"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://notifier:password@%s:%s/notifier_test?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	return db
}

func TestIntegration_CatalogRoundTrip(t *testing.T) {
	db := startPostgres(t)
	store := New(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	version, dirty, err := MigrationVersion(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)

	require.NoError(t, store.CreateGlobalTemplate(ctx, &models.GlobalTemplate{
		ID: "global-invite", Type: models.TypeInvite, Name: "Invite", Category: models.CategoryTransactional,
		DefaultSubject: "You've been invited, {{recipient_name}}!", IsSystem: true,
		Variables: []models.TemplateVariable{{Key: "recipient_name", Label: "Recipient Name"}},
		CreatedAt: now, UpdatedAt: now,
	}))

	site := &models.SiteTemplate{
		ID: "st-1", SiteID: "site-1", GlobalTemplateID: "global-invite", Type: models.TypeInvite,
		Name: "Invite", EmailEnabled: true, Subject: "Hi", Enabled: true,
		GDPR:      &models.GDPRSettings{IncludeUnsubscribeLink: true, DataControllerName: "Acme"},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.CreateSiteTemplate(ctx, site))

	dup := *site
	dup.ID = "st-2"
	assert.ErrorIs(t, store.CreateSiteTemplate(ctx, &dup), storage.ErrDuplicate)

	got, err := store.GetSiteTemplate(ctx, "st-1")
	require.NoError(t, err)
	require.NotNil(t, got.GDPR)
	assert.Equal(t, "Acme", got.GDPR.DataControllerName)

	require.NoError(t, store.AppendHistory(ctx, &models.EmailHistory{
		ID: "h-1", SiteID: "site-1", TemplateID: "st-1", RecipientEmail: "dana@example.com",
		Subject: "Hi", Status: models.StatusSent, SentAt: now,
		Context: models.HistoryContext{Variables: map[string]string{"recipient_name": "Dana"}},
	}))
	rows, total, err := store.ListHistory(ctx, "site-1", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dana", rows[0].Context.Variables["recipient_name"])
}
