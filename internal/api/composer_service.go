package api

import (
	"context"
	"fmt"
	"io"

	"github.com/matheus3301/conversa/internal/composer"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/rpc"
	"go.uber.org/zap"
)

func (s *Service) composerState(v *conversation.View) *rpc.ComposerState {
	v.Touch()
	out := composerToRPC(v.Composer().Snapshot())
	return &out
}

func (s *Service) SetText(ctx context.Context, req *rpc.SetTextRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	v.Composer().SetText(ctx, req.Text)
	return s.composerState(v), nil
}

func (s *Service) FormatText(_ context.Context, req *rpc.FormatTextRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	st, err := parseStyle(req.Style)
	if err != nil {
		return nil, toStatus(err)
	}
	if _, err := v.Composer().FormatText(req.Start, req.End, st, req.Color); err != nil {
		return nil, toStatus(err)
	}
	return s.composerState(v), nil
}

func (s *Service) StageFile(_ context.Context, req *rpc.StageFileRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	src, err := parseSource(req.Source)
	if err != nil {
		return nil, toStatus(err)
	}
	f := &composer.File{Name: req.Name, MIME: req.MIME, Data: req.Data}
	if err := v.Composer().ChooseFile(src, f); err != nil {
		return nil, toStatus(err)
	}
	return s.composerState(v), nil
}

func (s *Service) StageRecording(ctx context.Context, req *rpc.StageRecordingRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	c := v.Composer()
	rec, err := c.StartRecording(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if w, ok := rec.(io.Writer); ok {
		if _, err := w.Write(req.Data); err != nil {
			c.CancelRecording(ctx)
			return nil, toStatus(fmt.Errorf("buffer recording: %w", err))
		}
	}
	if err := c.StopRecording(ctx); err != nil {
		return nil, toStatus(err)
	}
	return s.composerState(v), nil
}

func (s *Service) SetCaption(_ context.Context, req *rpc.SetCaptionRequest) (*rpc.ActionResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	ok := v.Composer().SetCaption(req.Caption)
	return &rpc.ActionResponse{Applied: ok, Composer: *s.composerState(v)}, nil
}

func (s *Service) CancelDraft(ctx context.Context, req *rpc.PeerRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	v.Composer().CancelDraft(ctx)
	return s.composerState(v), nil
}

func (s *Service) ClearReply(_ context.Context, req *rpc.PeerRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	v.Composer().ClearReply()
	return s.composerState(v), nil
}

func (s *Service) CancelEdit(_ context.Context, req *rpc.PeerRequest) (*rpc.ComposerState, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	v.Composer().CancelEdit()
	return s.composerState(v), nil
}

func (s *Service) Send(ctx context.Context, req *rpc.PeerRequest) (*rpc.SendResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	id, err := v.Composer().Send(ctx)
	v.Touch()
	if err != nil {
		s.logger.Warn("send failed", zap.String("peer", req.Peer), zap.Error(err))
		return nil, toStatus(err)
	}
	return &rpc.SendResponse{MessageID: id}, nil
}

func (s *Service) RestoreFailed(_ context.Context, req *rpc.PeerRequest) (*rpc.ActionResponse, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	ok := v.Composer().RestoreFailed()
	return &rpc.ActionResponse{Applied: ok, Composer: *s.composerState(v)}, nil
}
