package content

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeRun = regexp.MustCompile(`[^a-zA-Z0-9.]+`)

// Fold removes diacritics from s.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeFilename strips diacritics, collapses every run of characters
// outside [a-zA-Z0-9.] into one hyphen and trims hyphens at both ends.
func SanitizeFilename(name string) string {
	s := unsafeRun.ReplaceAllString(Fold(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "arquivo"
	}
	return s
}

// ObjectKey is the storage key for an upload: <folder>/<ms>-<sanitized-name>.
func ObjectKey(k Kind, at time.Time, name string) string {
	return fmt.Sprintf("%s/%d-%s", k.Folder(), at.UnixMilli(), SanitizeFilename(name))
}

// KindForMIME infers the kind of a pasted file. Images stay images and
// everything else is an attachment.
func KindForMIME(mime string) Kind {
	if strings.HasPrefix(mime, "image/") {
		return Image
	}
	return Attachment
}

// ReplyLabel is the short preview shown for a reply target.
func ReplyLabel(k Kind, raw string) string {
	switch k {
	case Image:
		return "📷 Imagem"
	case Audio:
		return "🎤 Áudio"
	case Attachment:
		return "📎 Anexo"
	default:
		return Plain(Decode(raw).Body)
	}
}

// AttachmentName is the last path segment of a storage URL.
func AttachmentName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// AttachmentClass groups a file name by extension for icon selection.
type AttachmentClass string

const (
	ClassPDF         AttachmentClass = "pdf"
	ClassDocument    AttachmentClass = "document"
	ClassSpreadsheet AttachmentClass = "spreadsheet"
	ClassImage       AttachmentClass = "image"
	ClassFile        AttachmentClass = "file"
)

// ClassOf returns the AttachmentClass for name.
func ClassOf(name string) AttachmentClass {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "pdf":
		return ClassPDF
	case "doc", "docx":
		return ClassDocument
	case "xls", "xlsx":
		return ClassSpreadsheet
	case "jpg", "jpeg", "png", "gif", "webp":
		return ClassImage
	default:
		return ClassFile
	}
}
