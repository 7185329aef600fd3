package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// commitFields selects what git.Commit needs. Octopus merges with more
// than ten parents are truncated.
const commitFields = `
        oid
        message
        committedDate
        parents(first: 10) {
          nodes { oid }
        }`

// tagsQuery fetches all tags, peeling annotated tags through to their
// commit and reading the tagger date used to rank them.
const tagsQuery = `
query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    refs(refPrefix: "refs/tags/", first: 100, after: $cursor) {
      nodes {
        name
        target {
          __typename
          oid
          ... on Tag {
            tagger { date }
            target {
              __typename
              ... on Commit {` + commitFields + `
              }
            }
          }
          ... on Commit {` + commitFields + `
          }
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
}
`

// historyQuery fetches a page of ancestors of a commit, so that a describe
// walk costs one request per page instead of one per commit.
const historyQuery = `
query($owner: String!, $name: String!, $oid: GitObjectID!, $first: Int!) {
  repository(owner: $owner, name: $name) {
    object(oid: $oid) {
      ... on Commit {
        history(first: $first) {
          nodes {` + commitFields + `
          }
        }
      }
    }
  }
}
`

// graphQL response types.

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type refsResponse struct {
	Repository struct {
		Refs refConnection `json:"refs"`
	} `json:"repository"`
}

type historyResponse struct {
	Repository struct {
		Object *struct {
			History struct {
				Nodes []refTarget `json:"nodes"`
			} `json:"history"`
		} `json:"object"`
	} `json:"repository"`
}

type refConnection struct {
	Nodes    []refNode `json:"nodes"`
	PageInfo pageInfo  `json:"pageInfo"`
}

type refNode struct {
	Name   string    `json:"name"`
	Target refTarget `json:"target"`
}

type refTarget struct {
	TypeName      string     `json:"__typename"`
	OID           string     `json:"oid"`
	Message       string     `json:"message"`
	CommittedDate string     `json:"committedDate"`
	Parents       parentList `json:"parents"`
	Tagger        *tagger    `json:"tagger"`
	// For annotated tags: nested target.
	Target *refTarget `json:"target"`
}

type tagger struct {
	Date string `json:"date"`
}

type parentList struct {
	Nodes []struct {
		OID string `json:"oid"`
	} `json:"nodes"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// executeGraphQL sends a GraphQL query using the client's HTTP transport.
func (r *GitHubRepository) executeGraphQL(query string, variables map[string]interface{}) (json.RawMessage, error) {
	bodyBytes, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshaling GraphQL request: %w", err)
	}

	graphqlURL := "https://api.github.com/graphql"
	if r.baseURL != "" {
		graphqlURL = deriveGraphQLURL(r.baseURL)
	}

	httpReq, err := http.NewRequestWithContext(r.ctx, http.MethodPost, graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating GraphQL request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := r.client.Client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing GraphQL request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GraphQL response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp graphQLResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing GraphQL response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", resp.Errors[0].Message)
	}

	return resp.Data, nil
}

// fetchAllTagsGraphQL fetches all tags with peel info and tagger dates.
// Peeled commits are cached as a side effect. Tags whose target is neither
// a commit nor a tag of a commit are skipped.
func (r *GitHubRepository) fetchAllTagsGraphQL() ([]git.Tag, error) {
	var tags []git.Tag
	var cursor *string

	for {
		vars := map[string]interface{}{
			"owner": r.owner,
			"name":  r.repo,
		}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		data, err := r.executeGraphQL(tagsQuery, vars)
		if err != nil {
			return nil, fmt.Errorf("fetching tags via GraphQL: %w", err)
		}

		var resp refsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("parsing tags response: %w", err)
		}

		for _, node := range resp.Repository.Refs.Nodes {
			tag, ok := r.tagFromNode(node)
			if ok {
				tags = append(tags, tag)
			}
		}

		if !resp.Repository.Refs.PageInfo.HasNextPage {
			break
		}
		cursor = &resp.Repository.Refs.PageInfo.EndCursor
	}

	return tags, nil
}

func (r *GitHubRepository) tagFromNode(node refNode) (git.Tag, bool) {
	tag := git.Tag{
		Name:      git.NewTagReferenceName(node.Name),
		TargetSha: node.Target.OID,
	}

	switch node.Target.TypeName {
	case "Commit":
		r.cache.putCommit(commitFromRefTarget(node.Target))

	case "Tag":
		peeled := node.Target.Target
		if peeled == nil || peeled.TypeName != "Commit" || peeled.OID == "" {
			return git.Tag{}, false
		}
		r.cache.putCommit(commitFromRefTarget(*peeled))
		tag.Annotated = true
		tag.CommitSha = peeled.OID
		if node.Target.Tagger != nil && node.Target.Tagger.Date != "" {
			if when, err := time.Parse(time.RFC3339, node.Target.Tagger.Date); err == nil {
				when = when.UTC()
				tag.TaggerWhen = &when
			}
		}

	default:
		return git.Tag{}, false
	}

	return tag, true
}

// fetchHistoryGraphQL caches up to r.historyBatch ancestors of sha,
// starting with sha itself. It reports whether sha was found.
func (r *GitHubRepository) fetchHistoryGraphQL(sha string) (bool, error) {
	data, err := r.executeGraphQL(historyQuery, map[string]interface{}{
		"owner": r.owner,
		"name":  r.repo,
		"oid":   sha,
		"first": r.historyBatch,
	})
	if err != nil {
		return false, fmt.Errorf("fetching history via GraphQL: %w", err)
	}

	var resp historyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("parsing history response: %w", err)
	}
	if resp.Repository.Object == nil {
		return false, nil
	}

	found := false
	for _, node := range resp.Repository.Object.History.Nodes {
		r.cache.putCommit(commitFromRefTarget(node))
		if node.OID == sha {
			found = true
		}
	}
	return found, nil
}

// deriveGraphQLURL converts a GitHub REST API base URL to the corresponding
// GraphQL endpoint. For GitHub Enterprise, the REST base URL is typically
// "https://ghe.example.com/api/v3" and the GraphQL endpoint is
// "https://ghe.example.com/api/graphql" (not "/api/v3/graphql").
func deriveGraphQLURL(baseURL string) string {
	if trimmed, ok := strings.CutSuffix(strings.TrimRight(baseURL, "/"), "/api/v3"); ok {
		return trimmed + "/api/graphql"
	}
	return strings.TrimRight(baseURL, "/") + "/graphql"
}

// commitFromRefTarget converts a GraphQL commit node to a git.Commit.
func commitFromRefTarget(target refTarget) git.Commit {
	parents := make([]string, 0, len(target.Parents.Nodes))
	for _, p := range target.Parents.Nodes {
		parents = append(parents, p.OID)
	}

	var when time.Time
	if target.CommittedDate != "" {
		when, _ = time.Parse(time.RFC3339, target.CommittedDate)
		when = when.UTC()
	}

	return git.Commit{
		Sha:     target.OID,
		Parents: parents,
		When:    when,
		Message: target.Message,
	}
}
