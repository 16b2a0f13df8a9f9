package rpc

// Empty is the response of calls that return nothing.
type Empty struct{}

// PeerRequest addresses the open conversation with Peer.
type PeerRequest struct {
	Peer string `json:"peer"`
}

// MessageRequest addresses one message of the conversation with Peer.
type MessageRequest struct {
	Peer      string `json:"peer"`
	MessageID string `json:"message_id"`
}

type GetSessionStatusRequest struct{}

type SessionStatus struct {
	Workspace         string   `json:"workspace"`
	UserID            string   `json:"user_id"`
	Status            string   `json:"status"`
	Reason            string   `json:"reason,omitempty"`
	SinceUnixMs       int64    `json:"since_unix_ms"`
	UptimeMs          int64    `json:"uptime_ms"`
	Connected         bool     `json:"connected"`
	MessageCount      int      `json:"message_count"`
	OpenConversations []string `json:"open_conversations"`
}

type ListContactsRequest struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
	Status   string `json:"status"`
	Unread   int    `json:"unread"`
}

type ListContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
	Mine  bool     `json:"mine"`
}

type Message struct {
	ID                 string          `json:"id"`
	SenderID           string          `json:"sender_id"`
	RecipientID        string          `json:"recipient_id"`
	Kind               string          `json:"kind"`
	Body               string          `json:"body"`
	Caption            string          `json:"caption,omitempty"`
	HTML               string          `json:"html,omitempty"`
	Time               string          `json:"time"`
	CreatedAtUnixMs    int64           `json:"created_at_unix_ms"`
	Read               bool            `json:"read"`
	Mine               bool            `json:"mine"`
	Actions            []string        `json:"actions"`
	Reactions          []ReactionGroup `json:"reactions,omitempty"`
	ReplyToID          string          `json:"reply_to_id,omitempty"`
	ReplyLabel         string          `json:"reply_label,omitempty"`
	Forwarded          bool            `json:"forwarded,omitempty"`
	OriginalSenderName string          `json:"original_sender_name,omitempty"`
	Attachment         string          `json:"attachment,omitempty"`
}

type DateGroup struct {
	Label    string    `json:"label"`
	Messages []Message `json:"messages"`
}

type ReplyTarget struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id"`
	Label    string `json:"label"`
}

type Affordances struct {
	Attach bool `json:"attach"`
	Camera bool `json:"camera"`
	Mic    bool `json:"mic"`
	Send   bool `json:"send"`
}

type ComposerState struct {
	State       string       `json:"state"`
	Text        string       `json:"text"`
	DraftKind   string       `json:"draft_kind,omitempty"`
	DraftURL    string       `json:"draft_url,omitempty"`
	DraftName   string       `json:"draft_name,omitempty"`
	DraftLocal  bool         `json:"draft_local,omitempty"`
	Caption     string       `json:"caption,omitempty"`
	ReplyTo     *ReplyTarget `json:"reply_to,omitempty"`
	EditingID   string       `json:"editing_id,omitempty"`
	Recording   bool         `json:"recording"`
	Affordances Affordances  `json:"affordances"`
	Failed      bool         `json:"failed"`
}

type OverlayState struct {
	Selected    string `json:"selected,omitempty"`
	Highlighted string `json:"highlighted,omitempty"`
}

type ConversationView struct {
	Peer       Contact       `json:"peer"`
	PeerStatus string        `json:"peer_status,omitempty"`
	Groups     []DateGroup   `json:"groups"`
	Composer   ComposerState `json:"composer"`
	Overlay    OverlayState  `json:"overlay"`
}

type SetTextRequest struct {
	Peer string `json:"peer"`
	Text string `json:"text"`
}

type FormatTextRequest struct {
	Peer  string `json:"peer"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	// Style is bold, italic, underline or color.
	Style string `json:"style"`
	Color string `json:"color,omitempty"`
}

type StageFileRequest struct {
	Peer string `json:"peer"`
	// Source is picker, attachment, camera or paste.
	Source string `json:"source"`
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Data   []byte `json:"data"`
}

type StageRecordingRequest struct {
	Peer string `json:"peer"`
	MIME string `json:"mime,omitempty"`
	Data []byte `json:"data"`
}

type SetCaptionRequest struct {
	Peer    string `json:"peer"`
	Caption string `json:"caption"`
}

type ActionResponse struct {
	Applied  bool          `json:"applied"`
	Composer ComposerState `json:"composer"`
}

type SendResponse struct {
	MessageID string `json:"message_id"`
}

type ReactRequest struct {
	Peer      string `json:"peer"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type ReactResponse struct {
	Added bool `json:"added"`
}

type JumpResponse struct {
	Target string `json:"target,omitempty"`
}

type ForwardRequest struct {
	Peer       string   `json:"peer,omitempty"`
	MessageID  string   `json:"message_id"`
	Recipients []string `json:"recipients"`
}

type ForwardResponse struct {
	MessageIDs         []string `json:"message_ids"`
	OriginalSenderID   string   `json:"original_sender_id"`
	OriginalSenderName string   `json:"original_sender_name"`
	Navigate           string   `json:"navigate,omitempty"`
}

type MediaItem struct {
	MessageID       string `json:"message_id"`
	Kind            string `json:"kind"`
	URL             string `json:"url"`
	Caption         string `json:"caption,omitempty"`
	Name            string `json:"name"`
	Class           string `json:"class"`
	CreatedAtUnixMs int64  `json:"created_at_unix_ms"`
}

type SharedMediaResponse struct {
	Images      []MediaItem `json:"images"`
	Audios      []MediaItem `json:"audios"`
	Attachments []MediaItem `json:"attachments"`
}

type GetProfileRequest struct{}

// UpdateProfileRequest edits the signed-in user's profile. Empty fields keep
// their stored value; an avatar is sent only when AvatarData is set.
type UpdateProfileRequest struct {
	Name       string `json:"name,omitempty"`
	Status     string `json:"status,omitempty"`
	AvatarName string `json:"avatar_name,omitempty"`
	AvatarMIME string `json:"avatar_mime,omitempty"`
	AvatarData []byte `json:"avatar_data,omitempty"`
}

type SearchEmojiRequest struct {
	Query string `json:"query"`
}

type Emoji struct {
	Char string `json:"char"`
	Name string `json:"name"`
}

type SearchEmojiResponse struct {
	Quick   []string `json:"quick"`
	Results []Emoji  `json:"results"`
}

type WatchEventsRequest struct {
	// Kinds are event kind prefixes; empty means every event.
	Kinds []string `json:"kinds,omitempty"`
}

// EventEnvelope carries one daemon event. Payload is a protobuf-encoded
// google.protobuf.Struct.
type EventEnvelope struct {
	EventID          string `json:"event_id"`
	Kind             string `json:"kind"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	PayloadVersion   int    `json:"payload_version"`
	Payload          []byte `json:"payload,omitempty"`
}
