package api

import (
	"context"

	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/overlay"
	"github.com/matheus3301/conversa/internal/rpc"
	"go.uber.org/zap"
)

func (s *Service) ListContacts(ctx context.Context, req *rpc.ListContactsRequest) (*rpc.ListContactsResponse, error) {
	contacts, err := s.mgr.Contacts(ctx, conversation.ContactFilter{Status: req.Status, Search: req.Search})
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &rpc.ListContactsResponse{Contacts: make([]rpc.Contact, len(contacts))}
	for i, c := range contacts {
		resp.Contacts[i] = contactToRPC(c.Profile, c.Unread)
	}
	return resp, nil
}

func (s *Service) OpenConversation(ctx context.Context, req *rpc.PeerRequest) (*rpc.ConversationView, error) {
	v, err := s.mgr.Open(ctx, req.Peer)
	if err != nil {
		return nil, toStatus(err)
	}
	if _, err := v.Sync(ctx); err != nil {
		s.logger.Debug("sync on open skipped", zap.String("peer", req.Peer), zap.Error(err))
	}
	return s.snapshot(v), nil
}

func (s *Service) CloseConversation(ctx context.Context, req *rpc.PeerRequest) (*rpc.Empty, error) {
	s.mgr.Close(ctx, req.Peer)
	return &rpc.Empty{}, nil
}

func (s *Service) GetView(_ context.Context, req *rpc.PeerRequest) (*rpc.ConversationView, error) {
	v, err := s.view(req.Peer)
	if err != nil {
		return nil, err
	}
	return s.snapshot(v), nil
}

func (s *Service) Forward(ctx context.Context, req *rpc.ForwardRequest) (*rpc.ForwardResponse, error) {
	res, err := s.mgr.Forward(ctx, req.MessageID, req.Recipients)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &rpc.ForwardResponse{
		OriginalSenderID:   res.OriginalSenderID,
		OriginalSenderName: res.OriginalSenderName,
		Navigate:           res.Navigate,
	}
	for _, m := range res.Messages {
		resp.MessageIDs = append(resp.MessageIDs, m.ID)
	}
	return resp, nil
}

func (s *Service) ForwardCandidates(ctx context.Context, req *rpc.PeerRequest) (*rpc.ListContactsResponse, error) {
	profiles, err := s.mgr.ForwardCandidates(ctx, req.Peer)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &rpc.ListContactsResponse{Contacts: make([]rpc.Contact, len(profiles))}
	for i, p := range profiles {
		resp.Contacts[i] = contactToRPC(p, 0)
	}
	return resp, nil
}

func (s *Service) SharedMedia(ctx context.Context, req *rpc.PeerRequest) (*rpc.SharedMediaResponse, error) {
	media, err := s.mgr.SharedMedia(ctx, req.Peer)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.SharedMediaResponse{
		Images:      mediaToRPC(media.Images),
		Audios:      mediaToRPC(media.Audios),
		Attachments: mediaToRPC(media.Attachments),
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, _ *rpc.GetProfileRequest) (*rpc.Contact, error) {
	p, err := s.mgr.Profile(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	c := contactToRPC(p, 0)
	return &c, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.Contact, error) {
	u := conversation.ProfileUpdate{Name: req.Name, Status: req.Status}
	if len(req.AvatarData) > 0 {
		u.Avatar = &conversation.Avatar{Name: req.AvatarName, MIME: req.AvatarMIME, Data: req.AvatarData}
	}
	p, err := s.mgr.UpdateProfile(ctx, u)
	if err != nil {
		return nil, toStatus(err)
	}
	c := contactToRPC(p, 0)
	return &c, nil
}

func (s *Service) SearchEmoji(_ context.Context, req *rpc.SearchEmojiRequest) (*rpc.SearchEmojiResponse, error) {
	resp := &rpc.SearchEmojiResponse{Quick: overlay.QuickReactions}
	for _, e := range overlay.SearchEmoji(req.Query) {
		resp.Results = append(resp.Results, rpc.Emoji{Char: e.Char, Name: e.Name})
	}
	return resp, nil
}
