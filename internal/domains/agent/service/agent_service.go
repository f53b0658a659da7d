package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldserve-backend/internal/domains/agent/model"
	"fieldserve-backend/internal/domains/agent/repository"
	"fieldserve-backend/pkg/cache"
)

// presence flags expire on their own so a crashed agent app does not
// stay "online" forever
const presenceTTL = 5 * time.Minute

type AgentService interface {
	GetAgent(ctx context.Context, agentID uuid.UUID) (*model.Agent, error)
	GetStats(ctx context.Context, agentID uuid.UUID) (*model.AgentStatsResponse, error)
	SetOnline(ctx context.Context, agentID uuid.UUID, online bool) error
	IsOnline(ctx context.Context, agentID uuid.UUID) bool
}

type agentService struct {
	agentRepo repository.AgentRepository
	cache     cache.Cache
}

func NewAgentService(agentRepo repository.AgentRepository, cache cache.Cache) AgentService {
	return &agentService{
		agentRepo: agentRepo,
		cache:     cache,
	}
}

func (s *agentService) GetAgent(ctx context.Context, agentID uuid.UUID) (*model.Agent, error) {
	return s.agentRepo.GetByID(ctx, agentID)
}

func (s *agentService) GetStats(ctx context.Context, agentID uuid.UUID) (*model.AgentStatsResponse, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return &model.AgentStatsResponse{
		TotalJobs:     agent.TotalJobs,
		CompletedJobs: agent.CompletedJobs,
		TotalEarnings: agent.TotalEarnings,
		WalletBalance: agent.WalletBalance,
		Online:        s.IsOnline(ctx, agentID),
	}, nil
}

func presenceKey(agentID uuid.UUID) string {
	return fmt.Sprintf("agent:online:%s", agentID)
}

func (s *agentService) SetOnline(ctx context.Context, agentID uuid.UUID, online bool) error {
	key := presenceKey(agentID)
	if !online {
		return s.cache.Delete(ctx, key)
	}
	return s.cache.Set(ctx, key, true, presenceTTL)
}

// IsOnline is best-effort: a cache failure reads as offline
func (s *agentService) IsOnline(ctx context.Context, agentID uuid.UUID) bool {
	exists, err := s.cache.Exists(ctx, presenceKey(agentID))
	if err != nil {
		return false
	}
	return exists
}
