package types

import "fmt"

// DocumentStatus represents the indexing state of a document
type DocumentStatus string

const (
	// DocumentStatusPending means the blob is stored but no embedding exists yet
	DocumentStatusPending DocumentStatus = "pending"
	// DocumentStatusIndexed means the document is searchable
	DocumentStatusIndexed DocumentStatus = "indexed"
	// DocumentStatusFailed means the last indexing attempt failed
	DocumentStatusFailed DocumentStatus = "failed"
)

// AllDocumentStatuses returns all valid document statuses
func AllDocumentStatuses() []DocumentStatus {
	return []DocumentStatus{
		DocumentStatusPending,
		DocumentStatusIndexed,
		DocumentStatusFailed,
	}
}

// IsValid checks if the document status is valid
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending,
		DocumentStatusIndexed,
		DocumentStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document status
func (s DocumentStatus) String() string {
	return string(s)
}

// ParseDocumentStatus parses a string into a DocumentStatus
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	status := DocumentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid document status: %s", s)
	}
	return status, nil
}

// DocumentSource represents where a document came from
type DocumentSource string

const (
	DocumentSourceUpload DocumentSource = "upload"
	DocumentSourceNotion DocumentSource = "notion"
	DocumentSourceGitHub DocumentSource = "github"
)

// AllDocumentSources returns all valid document sources
func AllDocumentSources() []DocumentSource {
	return []DocumentSource{
		DocumentSourceUpload,
		DocumentSourceNotion,
		DocumentSourceGitHub,
	}
}

// IsValid checks if the document source is valid
func (s DocumentSource) IsValid() bool {
	switch s {
	case DocumentSourceUpload,
		DocumentSourceNotion,
		DocumentSourceGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation of the document source
func (s DocumentSource) String() string {
	return string(s)
}
