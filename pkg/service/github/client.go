package github

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"
)

const searchPageSize = 50

type client struct {
	gql *githubv4.Client
}

// New creates a new GitHub Service using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID, installationID int64, privateKey string) (Service, error) {
	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, loadPrivateKey(privateKey))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{
		gql: githubv4.NewClient(&http.Client{Transport: tr}),
	}, nil
}

func loadPrivateKey(privateKey string) []byte {
	// A readable path wins; anything else is treated as inline PEM
	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		return data
	}
	return []byte(privateKey)
}

// FetchFindings fetches labelled issues using GitHub GraphQL search
func (c *client) FetchFindings(ctx context.Context, owner, repo, label string) iter.Seq2[*Finding, error] {
	if label == "" {
		label = DefaultFindingLabel
	}

	return func(yield func(*Finding, error) bool) {
		search := fmt.Sprintf("repo:%s/%s is:issue label:%q sort:created-asc", owner, repo, label)
		var cursor *githubv4.String

		for {
			var q findingSearchQuery
			vars := map[string]interface{}{
				"query":  githubv4.String(search),
				"first":  githubv4.Int(searchPageSize),
				"cursor": cursor,
			}

			if err := c.gql.Query(ctx, &q, vars); err != nil {
				yield(nil, goerr.Wrap(err, "failed to search issues",
					goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("label", label)))
				return
			}

			for _, edge := range q.Search.Edges {
				if !yield(edge.Node.Issue.toFinding(), nil) {
					return
				}
			}

			if !q.Search.PageInfo.HasNextPage {
				return
			}
			cursor = &q.Search.PageInfo.EndCursor
		}
	}
}

// ValidateRepository checks repository accessibility and returns
// metadata. API errors are reported in the result rather than
// returned, so the caller can show them to the operator.
func (c *client) ValidateRepository(ctx context.Context, owner, repo string) (*RepositoryValidation, error) {
	var q repositoryQuery
	vars := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}

	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return &RepositoryValidation{
			Owner:        owner,
			Repo:         repo,
			ErrorMessage: err.Error(),
		}, nil
	}

	return &RepositoryValidation{
		Valid:       true,
		Owner:       owner,
		Repo:        repo,
		FullName:    owner + "/" + repo,
		Description: string(q.Repository.Description),
		IsPrivate:   bool(q.Repository.IsPrivate),
		IssueCount:  int(q.Repository.Issues.TotalCount),
	}, nil
}

// GraphQL query types

type findingSearchQuery struct {
	Search struct {
		Edges []struct {
			Node struct {
				Issue issueNode `graphql:"... on Issue"`
			}
		}
		PageInfo pageInfo
	} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
}

type issueNode struct {
	Number    githubv4.Int
	Title     githubv4.String
	Body      githubv4.String
	State     githubv4.String
	URL       githubv4.String
	CreatedAt githubv4.DateTime
	Author    struct {
		Login githubv4.String
	}
	Labels struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 20)"`
	Comments struct {
		Nodes []commentNode
	} `graphql:"comments(first: 100)"`
}

func (n issueNode) toFinding() *Finding {
	f := &Finding{
		Number:    int(n.Number),
		Title:     string(n.Title),
		Body:      string(n.Body),
		Author:    string(n.Author.Login),
		State:     string(n.State),
		URL:       string(n.URL),
		CreatedAt: n.CreatedAt.Time,
	}
	for _, l := range n.Labels.Nodes {
		f.Labels = append(f.Labels, string(l.Name))
	}
	for _, c := range n.Comments.Nodes {
		f.Comments = append(f.Comments, c.toComment())
	}
	return f
}

type commentNode struct {
	Author struct {
		Login githubv4.String
	}
	Body      githubv4.String
	CreatedAt githubv4.DateTime
	URL       githubv4.String
}

func (n commentNode) toComment() Comment {
	return Comment{
		Author:    string(n.Author.Login),
		Body:      string(n.Body),
		CreatedAt: n.CreatedAt.Time,
		URL:       string(n.URL),
	}
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

type repositoryQuery struct {
	Repository struct {
		Description githubv4.String
		IsPrivate   githubv4.Boolean
		Issues      struct {
			TotalCount githubv4.Int
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}
