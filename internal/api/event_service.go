package api

import (
	"fmt"
	"strings"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/status"
	"github.com/matheus3301/conversa/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// PayloadVersion is bumped when an event payload changes shape.
const PayloadVersion = 1

func (s *Service) WatchEvents(req *rpc.WatchEventsRequest, stream grpc.ServerStreamingServer[rpc.EventEnvelope]) error {
	ch, unsub := s.bus.SubscribeWhere("", 128, func(evt bus.Event) bool {
		if len(req.Kinds) == 0 {
			return true
		}
		for _, k := range req.Kinds {
			if strings.HasPrefix(evt.Kind, k) {
				return true
			}
		}
		return false
	})
	defer unsub()

	for {
		select {
		case evt := <-ch:
			env, err := Envelope(evt)
			if err != nil {
				s.logger.Warn("event dropped", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.Send(env); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

// Envelope wraps evt for the wire.
func Envelope(evt bus.Event) (*rpc.EventEnvelope, error) {
	st, err := structpb.NewStruct(payloadFields(evt.Payload))
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}
	raw, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &rpc.EventEnvelope{
		EventID:          evt.ID,
		Kind:             evt.Kind,
		OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
		PayloadVersion:   PayloadVersion,
		Payload:          raw,
	}, nil
}

// DecodePayload reverses the payload encoding of Envelope.
func DecodePayload(raw []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return st.AsMap(), nil
}

func payloadFields(p any) map[string]any {
	switch p := p.(type) {
	case store.Message:
		return map[string]any{
			"id":           p.ID,
			"sender_id":    p.SenderID,
			"recipient_id": p.RecipientID,
			"kind":         string(p.Kind),
			"content":      p.Content,
			"created_at":   p.CreatedAt,
			"reply_to_id":  p.ReplyToID,
		}
	case backend.MessageRef:
		return map[string]any{"id": p.ID, "sender_id": p.SenderID, "recipient_id": p.RecipientID}
	case backend.ReadReceipt:
		return map[string]any{"sender_id": p.SenderID, "recipient_id": p.RecipientID, "count": p.Count}
	case backend.ReactionSet:
		list := make([]any, len(p.Reactions))
		for i, r := range p.Reactions {
			list[i] = map[string]any{"id": r.ID, "sender_id": r.SenderID, "emoji": r.Emoji}
		}
		return map[string]any{"message_id": p.MessageID, "reactions": list}
	case backend.TypingChange:
		return map[string]any{"user_id": p.UserID, "peer_id": p.PeerID, "status": p.Status}
	case store.Profile:
		return map[string]any{"id": p.ID, "name": p.Name, "status": p.Status}
	case status.StatusChange:
		return map[string]any{"from": string(p.From), "to": string(p.To), "reason": p.Reason}
	case conversation.Changed:
		return map[string]any{"peer": p.Peer}
	case conversation.Notice:
		return map[string]any{"peer": p.Peer, "text": p.Text}
	default:
		return map[string]any{}
	}
}
