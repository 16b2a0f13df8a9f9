// Package content encodes and decodes the compound message payload string
// and renders its inline markup.
package content

import "strings"

// Separator joins a media payload and its caption inside a content string.
const Separator = "|SEPARATOR|"

// Kind is the message kind as persisted in the tipo column.
type Kind string

const (
	Text       Kind = "texto"
	Image      Kind = "imagem"
	Audio      Kind = "audio"
	Attachment Kind = "anexo"
)

// ParseKind maps a stored kind to a Kind. Empty or unknown values are text.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case Image, Audio, Attachment:
		return Kind(s)
	default:
		return Text
	}
}

// IsMedia reports whether the payload slot of this kind holds a storage URL.
func (k Kind) IsMedia() bool {
	return k == Image || k == Audio || k == Attachment
}

// Folder is the object storage prefix for uploads of this kind.
func (k Kind) Folder() string {
	switch k {
	case Image:
		return "imagens"
	case Audio:
		return "audios"
	case Attachment:
		return "anexos"
	default:
		return "textos"
	}
}

// Payload is a decoded content string.
type Payload struct {
	Body    string
	Caption string
}

// Decode splits raw on Separator. A missing separator yields an empty caption
// and empty input yields an empty payload.
func Decode(raw string) Payload {
	if raw == "" {
		return Payload{}
	}
	parts := strings.Split(raw, Separator)
	p := Payload{Body: parts[0]}
	if len(parts) > 1 {
		p.Caption = parts[1]
	}
	return p
}

// Encode joins body and caption. The separator is omitted when caption is empty.
func Encode(body, caption string) string {
	if caption == "" {
		return body
	}
	return body + Separator + caption
}

// Encode returns the content string for p.
func (p Payload) Encode() string {
	return Encode(p.Body, p.Caption)
}
