package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(tenantID string) *TenantRecord {
	now := time.Now().UTC()
	return &TenantRecord{
		TenantID:     tenantID,
		RoutingToken: NewRoutingToken(),
		AccessToken:  "secret-token",
		AccountID:    "178414",
		Active:       true,
		Keywords: []KeywordRule{
			{Keyword: "price", Response: "Prices start at $10"},
		},
		DailyLimit: 100,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMockClient_CreateAndResolve(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	rec := testRecord("acme")
	require.NoError(t, m.CreateTenant(ctx, rec))

	got, err := m.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "acme", got.TenantID)

	got, err = m.Resolve(ctx, "unknown-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMockClient_CreateConflict(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	require.NoError(t, m.CreateTenant(ctx, testRecord("acme")))
	err := m.CreateTenant(ctx, testRecord("acme"))
	require.Error(t, err)

	var ccf *ConditionalCheckFailed
	assert.ErrorAs(t, err, &ccf)
}

func TestMockClient_Updates(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	rec := testRecord("acme")
	require.NoError(t, m.CreateTenant(ctx, rec))

	require.NoError(t, m.UpdateDailyLimit(ctx, "acme", 5))
	require.NoError(t, m.UpdateKeywords(ctx, "acme", []KeywordRule{{Keyword: "hours", Response: "9-5"}}))
	require.NoError(t, m.SetActive(ctx, "acme", false))

	got, err := m.GetTenant(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.DailyLimit)
	assert.False(t, got.Active)
	require.Len(t, got.Keywords, 1)
	assert.Equal(t, "hours", got.Keywords[0].Keyword)
}

func TestMockClient_UpdateMissingTenant(t *testing.T) {
	m := NewMock()

	err := m.UpdateDailyLimit(context.Background(), "missing", 5)
	var ccf *ConditionalCheckFailed
	assert.ErrorAs(t, err, &ccf)
}

func TestMockClient_UpdateTimezoneValidates(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.CreateTenant(ctx, testRecord("acme")))

	assert.Error(t, m.UpdateTimezone(ctx, "acme", "Not/AZone"))
	assert.NoError(t, m.UpdateTimezone(ctx, "acme", "America/Sao_Paulo"))
}

func TestMockClient_CopyOnRead(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.CreateTenant(ctx, testRecord("acme")))

	got, err := m.GetTenant(ctx, "acme")
	require.NoError(t, err)
	got.DailyLimit = 999

	again, err := m.GetTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 100, again.DailyLimit)
}

func TestTenantRecord_Location(t *testing.T) {
	rec := &TenantRecord{Timezone: "Asia/Tokyo"}
	assert.Equal(t, "Asia/Tokyo", rec.Location().String())

	// Empty and bogus zones fall back to UTC.
	rec = &TenantRecord{}
	assert.Equal(t, time.UTC, rec.Location())

	rec = &TenantRecord{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, rec.Location())
}

func TestTenantRecord_Redacted(t *testing.T) {
	rec := testRecord("acme")
	red := rec.Redacted()

	assert.Empty(t, red.AccessToken)
	assert.Equal(t, "secret-token", rec.AccessToken)
	assert.Equal(t, rec.TenantID, red.TenantID)
}

func TestNewRoutingToken_Unique(t *testing.T) {
	a := NewRoutingToken()
	b := NewRoutingToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestCachedClient_ServesFromCache(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	rec := testRecord("acme")
	require.NoError(t, m.CreateTenant(ctx, rec))

	c := NewCached(m, time.Minute)

	got, err := c.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Mutate the backing store directly; the cached snapshot keeps serving
	// until a write through the cached client invalidates it.
	require.NoError(t, m.UpdateDailyLimit(ctx, "acme", 7))

	got, err = c.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)
	assert.Equal(t, 100, got.DailyLimit)

	require.NoError(t, c.UpdateDailyLimit(ctx, "acme", 7))
	got, err = c.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)
	assert.Equal(t, 7, got.DailyLimit)
}

func TestCachedClient_MissesNotCached(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	c := NewCached(m, time.Minute)

	got, err := c.Resolve(ctx, "tok-not-yet")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := testRecord("acme")
	rec.RoutingToken = "tok-not-yet"
	require.NoError(t, m.CreateTenant(ctx, rec))

	// A tenant created after the miss resolves immediately.
	got, err = c.Resolve(ctx, "tok-not-yet")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "acme", got.TenantID)
}

func TestCachedClient_ZeroTTLDisables(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	rec := testRecord("acme")
	require.NoError(t, m.CreateTenant(ctx, rec))

	c := NewCached(m, 0)

	_, err := c.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)

	require.NoError(t, m.UpdateDailyLimit(ctx, "acme", 7))
	got, err := c.Resolve(ctx, rec.RoutingToken)
	require.NoError(t, err)
	assert.Equal(t, 7, got.DailyLimit)
}
