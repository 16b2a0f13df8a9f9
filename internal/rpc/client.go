package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls conversa.v1.Conversa with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+name, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSessionStatus(ctx context.Context, in *GetSessionStatusRequest, opts ...grpc.CallOption) (*SessionStatus, error) {
	return invoke[SessionStatus](ctx, c.cc, "GetSessionStatus", in, opts)
}

func (c *Client) ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error) {
	return invoke[ListContactsResponse](ctx, c.cc, "ListContacts", in, opts)
}

func (c *Client) OpenConversation(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ConversationView, error) {
	return invoke[ConversationView](ctx, c.cc, "OpenConversation", in, opts)
}

func (c *Client) CloseConversation(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "CloseConversation", in, opts)
}

func (c *Client) GetView(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ConversationView, error) {
	return invoke[ConversationView](ctx, c.cc, "GetView", in, opts)
}

func (c *Client) SetText(ctx context.Context, in *SetTextRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "SetText", in, opts)
}

func (c *Client) FormatText(ctx context.Context, in *FormatTextRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "FormatText", in, opts)
}

func (c *Client) StageFile(ctx context.Context, in *StageFileRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "StageFile", in, opts)
}

func (c *Client) StageRecording(ctx context.Context, in *StageRecordingRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "StageRecording", in, opts)
}

func (c *Client) SetCaption(ctx context.Context, in *SetCaptionRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c.cc, "SetCaption", in, opts)
}

func (c *Client) CancelDraft(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "CancelDraft", in, opts)
}

func (c *Client) ReplyTo(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "ReplyTo", in, opts)
}

func (c *Client) ClearReply(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "ClearReply", in, opts)
}

func (c *Client) BeginEdit(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c.cc, "BeginEdit", in, opts)
}

func (c *Client) CancelEdit(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ComposerState, error) {
	return invoke[ComposerState](ctx, c.cc, "CancelEdit", in, opts)
}

func (c *Client) Send(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*SendResponse, error) {
	return invoke[SendResponse](ctx, c.cc, "Send", in, opts)
}

func (c *Client) RestoreFailed(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c.cc, "RestoreFailed", in, opts)
}

func (c *Client) React(ctx context.Context, in *ReactRequest, opts ...grpc.CallOption) (*ReactResponse, error) {
	return invoke[ReactResponse](ctx, c.cc, "React", in, opts)
}

func (c *Client) Delete(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*ActionResponse, error) {
	return invoke[ActionResponse](ctx, c.cc, "Delete", in, opts)
}

func (c *Client) JumpToReply(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*JumpResponse, error) {
	return invoke[JumpResponse](ctx, c.cc, "JumpToReply", in, opts)
}

func (c *Client) Forward(ctx context.Context, in *ForwardRequest, opts ...grpc.CallOption) (*ForwardResponse, error) {
	return invoke[ForwardResponse](ctx, c.cc, "Forward", in, opts)
}

func (c *Client) ForwardCandidates(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*ListContactsResponse, error) {
	return invoke[ListContactsResponse](ctx, c.cc, "ForwardCandidates", in, opts)
}

func (c *Client) SharedMedia(ctx context.Context, in *PeerRequest, opts ...grpc.CallOption) (*SharedMediaResponse, error) {
	return invoke[SharedMediaResponse](ctx, c.cc, "SharedMedia", in, opts)
}

func (c *Client) SearchEmoji(ctx context.Context, in *SearchEmojiRequest, opts ...grpc.CallOption) (*SearchEmojiResponse, error) {
	return invoke[SearchEmojiResponse](ctx, c.cc, "SearchEmoji", in, opts)
}

func (c *Client) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Contact, error) {
	return invoke[Contact](ctx, c.cc, "GetProfile", in, opts)
}

func (c *Client) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Contact, error) {
	return invoke[Contact](ctx, c.cc, "UpdateProfile", in, opts)
}

// WatchEvents opens the event stream.
func (c *Client) WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[EventEnvelope], error) {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchEvents", opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchEventsRequest, EventEnvelope]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
