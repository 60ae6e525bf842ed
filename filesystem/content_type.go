package filesystem

import "strings"

// ContentType is the fixed set of media types the server can announce.
type ContentType uint8

const (
	ContentTypeHTML ContentType = iota
	ContentTypeJPEG
	ContentTypeGIF
	ContentTypeIcon
)

var contentTypes = [...]string{
	ContentTypeHTML: "text/html",
	ContentTypeJPEG: "image/jpeg",
	ContentTypeGIF:  "image/gif",
	ContentTypeIcon: "image/x-icon",
}

func (contentType ContentType) String() string {
	if int(contentType) < len(contentTypes) {
		return contentTypes[contentType]
	}
	return contentTypes[ContentTypeHTML]
}

// ContentTypeOf classifies name by the text after its last dot, ignoring case.
// Names without a known extension are served as HTML.
func ContentTypeOf(name string) ContentType {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ContentTypeHTML
	}

	switch strings.ToLower(name[i+1:]) {
	case "jpg", "jpeg":
		return ContentTypeJPEG
	case "gif":
		return ContentTypeGIF
	case "ico":
		return ContentTypeIcon
	default:
		return ContentTypeHTML
	}
}
