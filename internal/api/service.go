// Package api implements the conversa.v1.Conversa gRPC service on top of the
// conversation manager.
package api

import (
	"context"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/status"
	"go.uber.org/zap"
)

// Service implements rpc.ConversaServer.
type Service struct {
	workspace string
	startedAt time.Time
	machine   *status.Machine
	be        *backend.Client
	mgr       *conversation.Manager
	bus       *bus.Bus
	logger    *zap.Logger
	now       func() time.Time
}

var _ rpc.ConversaServer = (*Service)(nil)

// NewService creates the service for one workspace.
func NewService(workspace string, machine *status.Machine, be *backend.Client, mgr *conversation.Manager, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		workspace: workspace,
		startedAt: time.Now(),
		machine:   machine,
		be:        be,
		mgr:       mgr,
		bus:       b,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) GetSessionStatus(ctx context.Context, _ *rpc.GetSessionStatusRequest) (*rpc.SessionStatus, error) {
	resp := &rpc.SessionStatus{
		Workspace:         s.workspace,
		UserID:            s.mgr.Self(),
		Status:            string(s.machine.Current()),
		Reason:            s.machine.Reason(),
		SinceUnixMs:       s.machine.Since().UnixMilli(),
		UptimeMs:          time.Since(s.startedAt).Milliseconds(),
		Connected:         s.be.Connected(),
		OpenConversations: s.mgr.Peers(),
	}
	if n, err := s.be.MessageCount(ctx); err == nil {
		resp.MessageCount = n
	}
	return resp, nil
}

func (s *Service) view(peer string) (*conversation.View, error) {
	v, err := s.mgr.Get(peer)
	if err != nil {
		return nil, toStatus(err)
	}
	return v, nil
}

func (s *Service) snapshot(v *conversation.View) *rpc.ConversationView {
	out := viewToRPC(v.Snapshot(s.now()))
	return &out
}
