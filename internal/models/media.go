package models

import (
	"strings"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
)

// MediaTypeFromMIME classifies a mime type into the coarse media buckets.
// Anything that is not image, video, or audio counts as a document.
func MediaTypeFromMIME(mimeType string) MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaTypeAudio
	default:
		return MediaTypeDocument
	}
}

type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// CanTransitionTo encodes the pending -> processing -> completed|failed
// state machine. Completed and failed are terminal.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case ProcessingStatusPending:
		return next == ProcessingStatusProcessing
	case ProcessingStatusProcessing:
		return next == ProcessingStatusCompleted || next == ProcessingStatusFailed
	}
	return false
}

// MediaUsage is a back-reference recording where a file is embedded.
type MediaUsage struct {
	ContentID string `bson:"content_id" json:"content_id"`
	UsageType string `bson:"usage_type,omitempty" json:"usage_type,omitempty"`
}

type MediaThumbnail struct {
	Size string `bson:"size" json:"size"`
	Path string `bson:"path" json:"path"`
}

type MediaProcessing struct {
	Status ProcessingStatus `bson:"status" json:"status"`
	Error  string           `bson:"error,omitempty" json:"error,omitempty"`
}

type Media struct {
	Meta       `bson:",inline"`
	FileName   string           `bson:"file_name" json:"file_name"`
	FilePath   string           `bson:"file_path" json:"file_path"`
	MimeType   string           `bson:"mime_type" json:"mime_type"`
	MediaType  MediaType        `bson:"media_type" json:"media_type"`
	SizeBytes  int64            `bson:"size_bytes" json:"size_bytes"`
	Alt        string           `bson:"alt,omitempty" json:"alt,omitempty"`
	Caption    string           `bson:"caption,omitempty" json:"caption,omitempty"`
	UploadedBy string           `bson:"uploaded_by,omitempty" json:"uploaded_by,omitempty"`
	UsedIn     []MediaUsage     `bson:"used_in,omitempty" json:"used_in,omitempty"`
	Processing MediaProcessing  `bson:"processing" json:"processing"`
	Thumbnails []MediaThumbnail `bson:"thumbnails,omitempty" json:"thumbnails,omitempty"`
	Width      int              `bson:"width,omitempty" json:"width,omitempty"`
	Height     int              `bson:"height,omitempty" json:"height,omitempty"`
	Duration   float64          `bson:"duration,omitempty" json:"duration,omitempty"`
}

func (m Media) Validate() error {
	if m.FileName == "" {
		return errRequired("file_name")
	}
	if m.FilePath == "" {
		return errRequired("file_path")
	}
	if m.MimeType == "" {
		return errRequired("mime_type")
	}
	return nil
}
