package api

import (
	"context"

	"github.com/matheus3301/conversa/internal/rpc"
)

func (s *Service) ReplyTo(ctx context.Context, req *rpc.MessageRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	if err := v.ReplyTo(ctx, req.MessageID); err != nil {
		return nil, toStatus(err)
	}
	return s.composerState(v), nil
}

func (s *Service) BeginEdit(ctx context.Context, req *rpc.MessageRequest) (*rpc.ActionResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	ok, err := v.BeginEdit(ctx, req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ActionResponse{Applied: ok, Composer: *s.composerState(v)}, nil
}

func (s *Service) React(ctx context.Context, req *rpc.ReactRequest) (*rpc.ReactResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	added, err := v.React(ctx, req.MessageID, req.Emoji)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ReactResponse{Added: added}, nil
}

func (s *Service) Delete(ctx context.Context, req *rpc.MessageRequest) (*rpc.ActionResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	ok, err := v.Delete(ctx, req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ActionResponse{Applied: ok, Composer: *s.composerState(v)}, nil
}

func (s *Service) JumpToReply(ctx context.Context, req *rpc.MessageRequest) (*rpc.JumpResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	target, err := v.JumpToReply(ctx, req.MessageID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.JumpResponse{Target: target}, nil
}
