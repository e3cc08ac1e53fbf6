package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle state of a policy document
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusReview    DocumentStatus = "review"
	StatusPublished DocumentStatus = "published"
	StatusArchived  DocumentStatus = "archived"
)

// FileType identifies the stored file format of a document
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	// FileTypeDOC is the legacy binary Word format. It is recognized so
	// the ingestion path can reject it with a conversion hint instead of
	// a generic unsupported-format error.
	FileTypeDOC         FileType = "doc"
	FileTypeUnsupported FileType = "unsupported"
)

// MIMEType returns the MIME type for the file type, or an empty string
// for unsupported formats.
func (f FileType) MIMEType() string {
	switch f {
	case FileTypePDF:
		return "application/pdf"
	case FileTypeDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FileTypeDOC:
		return "application/msword"
	default:
		return ""
	}
}

// FileTypeFromMIME maps a MIME type to a FileType
func FileTypeFromMIME(mimeType string) FileType {
	switch mimeType {
	case "application/pdf":
		return FileTypePDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FileTypeDOCX
	case "application/msword":
		return FileTypeDOC
	default:
		return FileTypeUnsupported
	}
}

// Document represents a policy document. Documents are the unit of
// ingestion but never the unit of retrieval; only their chunks are searched.
type Document struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Status        DocumentStatus `json:"status"`
	FilePath      string         `json:"file_path"`
	FileType      FileType       `json:"file_type"`
	Version       int            `json:"version"`
	EffectiveDate *time.Time     `json:"effective_date,omitempty"`
	ReviewDate    *time.Time     `json:"review_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
