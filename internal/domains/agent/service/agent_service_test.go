package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldserve-backend/internal/domains/agent/model"
)

type fakeAgentRepo struct {
	agents map[uuid.UUID]*model.Agent
}

func (r *fakeAgentRepo) GetByID(_ context.Context, agentID uuid.UUID) (*model.Agent, error) {
	a, ok := r.agents[agentID]
	if !ok {
		return nil, model.ErrAgentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAgentRepo) CreditEarningsWithTx(context.Context, pgx.Tx, uuid.UUID, uuid.UUID, decimal.Decimal) (bool, error) {
	return false, nil
}

// fakeCache is an in-memory cache.Cache; failAll makes every call error
// to exercise the best-effort paths
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failAll bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

var errCacheDown = errors.New("cache down")

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return false, errCacheDown
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return errCacheDown
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll {
		return false, errCacheDown
	}
	_, ok := c.entries[key]
	return ok, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }

func seedAgent() (*fakeAgentRepo, uuid.UUID) {
	id := uuid.New()
	repo := &fakeAgentRepo{agents: map[uuid.UUID]*model.Agent{
		id: {
			ID:            id,
			FullName:      "Dana Reyes",
			Status:        string(model.AgentStatusActive),
			TotalJobs:     12,
			CompletedJobs: 11,
			TotalEarnings: decimal.NewFromInt(1320),
			WalletBalance: decimal.NewFromInt(450),
		},
	}}
	return repo, id
}

func TestGetAgent(t *testing.T) {
	repo, id := seedAgent()
	svc := NewAgentService(repo, newFakeCache())

	agent, err := svc.GetAgent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", agent.FullName)

	_, err = svc.GetAgent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrAgentNotFound)
}

func TestPresenceRoundTrip(t *testing.T) {
	repo, id := seedAgent()
	svc := NewAgentService(repo, newFakeCache())
	ctx := context.Background()

	assert.False(t, svc.IsOnline(ctx, id))

	require.NoError(t, svc.SetOnline(ctx, id, true))
	assert.True(t, svc.IsOnline(ctx, id))

	require.NoError(t, svc.SetOnline(ctx, id, false))
	assert.False(t, svc.IsOnline(ctx, id))
}

func TestIsOnline_CacheFailureReadsOffline(t *testing.T) {
	repo, id := seedAgent()
	cache := newFakeCache()
	svc := NewAgentService(repo, cache)
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, id, true))

	cache.failAll = true
	assert.False(t, svc.IsOnline(ctx, id))
}

func TestGetStats(t *testing.T) {
	repo, id := seedAgent()
	svc := NewAgentService(repo, newFakeCache())
	ctx := context.Background()
	require.NoError(t, svc.SetOnline(ctx, id, true))

	stats, err := svc.GetStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalJobs)
	assert.Equal(t, 11, stats.CompletedJobs)
	assert.True(t, stats.TotalEarnings.Equal(decimal.NewFromInt(1320)))
	assert.True(t, stats.WalletBalance.Equal(decimal.NewFromInt(450)))
	assert.True(t, stats.Online)
}
