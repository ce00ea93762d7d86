package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"
	"wecelebrate-notifier/internal/storage/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) (*memory.Store, *models.SiteTemplate) {
	t.Helper()
	st := &models.SiteTemplate{
		ID: "st-1", SiteID: "site-1", GlobalTemplateID: "global-invite", Type: models.TypeInvite,
		Name: "Invite", EmailEnabled: true, Subject: "Hi {{recipient_name}}", Enabled: true,
		CreatedAt: created, UpdatedAt: created,
	}
	store := memory.New()
	require.NoError(t, store.CreateSiteTemplate(context.Background(), st))
	return store, st
}

// ==========================
// redismock
// ==========================

func TestGetSiteTemplate_MissPopulatesCache(t *testing.T) {
	store, st := seededStore(t)
	rdb, mock := redismock.NewClientMock()
	cache := New(store, rdb, 5*time.Minute, "", logger.NewTestLogger(t))

	data, err := json.Marshal(st)
	require.NoError(t, err)
	mock.ExpectGet("site-template:st-1").RedisNil()
	mock.ExpectSet("site-template:st-1", data, 5*time.Minute).SetVal("OK")

	got, err := cache.GetSiteTemplate(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "Hi {{recipient_name}}", got.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSiteTemplate_HitSkipsStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cached := models.SiteTemplate{ID: "st-9", SiteID: "site-1", Type: models.TypeThankYou, Subject: "Thanks"}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	mock.ExpectGet("tpl:st-9").SetVal(string(data))

	// empty store: a fall-through would return ErrNotFound
	cache := New(memory.New(), rdb, time.Minute, "tpl", logger.NewTestLogger(t))
	got, err := cache.GetSiteTemplate(context.Background(), "st-9")
	require.NoError(t, err)
	assert.Equal(t, "Thanks", got.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSiteTemplate_RedisDownFallsThrough(t *testing.T) {
	store, _ := seededStore(t)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("site-template:st-1").SetErr(errors.New("connection refused"))

	cache := New(store, rdb, time.Minute, "", logger.NewTestLogger(t))
	got, err := cache.GetSiteTemplate(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "site-1", got.SiteID)
}

func TestGetSiteTemplate_NotFoundIsNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("site-template:missing").RedisNil()

	cache := New(memory.New(), rdb, time.Minute, "", logger.NewTestLogger(t))
	_, err := cache.GetSiteTemplate(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSiteTemplate_Invalidates(t *testing.T) {
	store, _ := seededStore(t)
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel("site-template:st-1").SetVal(1)

	cache := New(store, rdb, time.Minute, "", logger.NewTestLogger(t))
	require.NoError(t, cache.DeleteSiteTemplate(context.Background(), "st-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// miniredis
// ==========================

func newMiniredisCache(t *testing.T, store storage.SiteTemplateStore, ttl time.Duration) (*SiteTemplates, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(store, rdb, ttl, "", logger.NewTestLogger(t)), mr
}

func TestCache_UpdateDropsStaleEntry(t *testing.T) {
	ctx := context.Background()
	store, st := seededStore(t)
	cache, mr := newMiniredisCache(t, store, time.Minute)

	_, err := cache.GetSiteTemplate(ctx, "st-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("site-template:st-1"))

	st.Subject = "Welcome aboard, {{recipient_name}}"
	require.NoError(t, cache.UpdateSiteTemplate(ctx, st))
	assert.False(t, mr.Exists("site-template:st-1"))

	got, err := cache.GetSiteTemplate(ctx, "st-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard, {{recipient_name}}", got.Subject)
}

func TestCache_EntryExpires(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)
	cache, mr := newMiniredisCache(t, store, 30*time.Second)

	_, err := cache.GetSiteTemplate(ctx, "st-1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("site-template:st-1"))

	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists("site-template:st-1"))
}
