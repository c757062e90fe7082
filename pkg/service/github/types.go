package github

import (
	"context"
	"iter"
	"time"
)

// DefaultFindingLabel is the issue label that marks findings to ingest
const DefaultFindingLabel = "finding"

// Service provides interface to GitHub API for fetching repository findings
type Service interface {
	// FetchFindings returns issues carrying the given label, with comments.
	// An empty label falls back to DefaultFindingLabel.
	FetchFindings(ctx context.Context, owner, repo, label string) iter.Seq2[*Finding, error]

	// ValidateRepository checks if the repository is accessible and returns metadata
	ValidateRepository(ctx context.Context, owner, repo string) (*RepositoryValidation, error)
}

// Finding represents a GitHub issue labelled as a finding, with its comments
type Finding struct {
	Number    int
	Title     string
	Body      string
	Author    string
	State     string
	URL       string
	Labels    []string
	CreatedAt time.Time
	Comments  []Comment
}

// Comment represents a comment on a GitHub issue
type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
	URL       string
}

// RepositoryValidation holds the result of repository validation
type RepositoryValidation struct {
	Valid        bool
	Owner        string
	Repo         string
	FullName     string
	Description  string
	IsPrivate    bool
	IssueCount   int
	ErrorMessage string
}
