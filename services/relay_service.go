package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
	"context"
)

type IRelayService interface {
	HandleEvent(ctx context.Context, evt domain.ChatEvent, session contract.Session)
	HandleDisconnect(ctx context.Context, session contract.Session)
	Roster() []domain.UserProfile
	Online() int
}

// RelayService is the thin façade transport adapters talk to.
type RelayService struct {
	router   *runtime.Router
	presence contract.Presence
}

func NewRelayService(router *runtime.Router, presence contract.Presence) *RelayService {
	return &RelayService{router: router, presence: presence}
}

func (s *RelayService) HandleEvent(ctx context.Context, evt domain.ChatEvent, session contract.Session) {
	s.router.OnClientEvent(ctx, evt, session)
}

func (s *RelayService) HandleDisconnect(ctx context.Context, session contract.Session) {
	s.router.OnDisconnect(ctx, session)
}

func (s *RelayService) Roster() []domain.UserProfile {
	return s.presence.Snapshot()
}

func (s *RelayService) Online() int {
	return s.presence.Size()
}
