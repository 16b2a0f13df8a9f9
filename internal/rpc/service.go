package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "conversa.v1.Conversa"

// ConversaServer is implemented by the daemon.
type ConversaServer interface {
	GetSessionStatus(context.Context, *GetSessionStatusRequest) (*SessionStatus, error)
	ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error)
	OpenConversation(context.Context, *PeerRequest) (*ConversationView, error)
	CloseConversation(context.Context, *PeerRequest) (*Empty, error)
	GetView(context.Context, *PeerRequest) (*ConversationView, error)
	SetText(context.Context, *SetTextRequest) (*ComposerState, error)
	FormatText(context.Context, *FormatTextRequest) (*ComposerState, error)
	StageFile(context.Context, *StageFileRequest) (*ComposerState, error)
	StageRecording(context.Context, *StageRecordingRequest) (*ComposerState, error)
	SetCaption(context.Context, *SetCaptionRequest) (*ActionResponse, error)
	CancelDraft(context.Context, *PeerRequest) (*ComposerState, error)
	ReplyTo(context.Context, *MessageRequest) (*ComposerState, error)
	ClearReply(context.Context, *PeerRequest) (*ComposerState, error)
	BeginEdit(context.Context, *MessageRequest) (*ActionResponse, error)
	CancelEdit(context.Context, *PeerRequest) (*ComposerState, error)
	Send(context.Context, *PeerRequest) (*SendResponse, error)
	RestoreFailed(context.Context, *PeerRequest) (*ActionResponse, error)
	React(context.Context, *ReactRequest) (*ReactResponse, error)
	Delete(context.Context, *MessageRequest) (*ActionResponse, error)
	JumpToReply(context.Context, *MessageRequest) (*JumpResponse, error)
	Forward(context.Context, *ForwardRequest) (*ForwardResponse, error)
	ForwardCandidates(context.Context, *PeerRequest) (*ListContactsResponse, error)
	SharedMedia(context.Context, *PeerRequest) (*SharedMediaResponse, error)
	SearchEmoji(context.Context, *SearchEmojiRequest) (*SearchEmojiResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*Contact, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*Contact, error)
	WatchEvents(*WatchEventsRequest, grpc.ServerStreamingServer[EventEnvelope]) error
}

func unary[Req, Resp any](name string, call func(ConversaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(ConversaServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchEventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ConversaServer).WatchEvents(in, &grpc.GenericServerStream[WatchEventsRequest, EventEnvelope]{ServerStream: stream})
}

// ServiceDesc describes conversa.v1.Conversa for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConversaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetSessionStatus", ConversaServer.GetSessionStatus),
		unary("ListContacts", ConversaServer.ListContacts),
		unary("OpenConversation", ConversaServer.OpenConversation),
		unary("CloseConversation", ConversaServer.CloseConversation),
		unary("GetView", ConversaServer.GetView),
		unary("SetText", ConversaServer.SetText),
		unary("FormatText", ConversaServer.FormatText),
		unary("StageFile", ConversaServer.StageFile),
		unary("StageRecording", ConversaServer.StageRecording),
		unary("SetCaption", ConversaServer.SetCaption),
		unary("CancelDraft", ConversaServer.CancelDraft),
		unary("ReplyTo", ConversaServer.ReplyTo),
		unary("ClearReply", ConversaServer.ClearReply),
		unary("BeginEdit", ConversaServer.BeginEdit),
		unary("CancelEdit", ConversaServer.CancelEdit),
		unary("Send", ConversaServer.Send),
		unary("RestoreFailed", ConversaServer.RestoreFailed),
		unary("React", ConversaServer.React),
		unary("Delete", ConversaServer.Delete),
		unary("JumpToReply", ConversaServer.JumpToReply),
		unary("Forward", ConversaServer.Forward),
		unary("ForwardCandidates", ConversaServer.ForwardCandidates),
		unary("SharedMedia", ConversaServer.SharedMedia),
		unary("SearchEmoji", ConversaServer.SearchEmoji),
		unary("GetProfile", ConversaServer.GetProfile),
		unary("UpdateProfile", ConversaServer.UpdateProfile),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "conversa/v1/conversa.proto",
}

// RegisterConversaServer registers srv on s.
func RegisterConversaServer(s grpc.ServiceRegistrar, srv ConversaServer) {
	s.RegisterService(&ServiceDesc, srv)
}
