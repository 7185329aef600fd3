package sdk_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/sdk"
)

func strPtr(s string) *string { return &s }

func TestDescribe_BasicRepo(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.AddCommit("initial commit")
	head := repo.AddCommit("second commit")

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path()})
	require.NoError(t, err)
	require.Equal(t, head[:7], result.Description)
	require.Equal(t, head[:7], result.Variables["Version"])
	require.Empty(t, result.Variables["LastTag"])
	require.Equal(t, "master", result.Details.BranchName())
	require.Empty(t, result.Explanation)
}

func TestDescribe_WithTag(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("initial commit")
	repo.CreateTag("v1.0.0", sha)
	head := repo.AddCommit("feature work")

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path()})
	require.NoError(t, err)
	require.Equal(t, "v1.0.0-1-g"+head[:7], result.Description)
	require.Equal(t, "1", result.Variables["CommitDistance"])
	require.Equal(t, 1, result.Details.CommitDistance())
}

func TestDescribe_Rev(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("release commit")
	repo.CreateAnnotatedTag("v2.0.0", sha, "release")
	repo.AddCommit("after release")

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path(), Rev: sha})
	require.NoError(t, err)
	require.Equal(t, "v2.0.0", result.Description)
	require.Equal(t, "true", result.Variables["IsCleanTag"])
}

func TestDescribe_InvalidPath(t *testing.T) {
	_, err := sdk.Describe(sdk.LocalOptions{Path: "/nonexistent/path"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening repository")
}

func TestDescribe_WithConfigFile(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("initial commit")
	repo.CreateTag("api/1.0.0", sha)
	repo.CreateTag("web/3.0.0", sha)
	head := repo.AddCommit("next commit")

	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("prefix: api/\nabbrev: 12\n"), 0o644))

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path(), ConfigPath: configPath})
	require.NoError(t, err)
	require.Equal(t, "1.0.0-1-g"+head[:12], result.Description)

	result, err = sdk.Describe(sdk.LocalOptions{Path: repo.Path(), ConfigPath: configPath, Prefix: strPtr("web/")})
	require.NoError(t, err)
	require.Equal(t, "3.0.0-1-g"+head[:12], result.Description)
}

func TestDescribe_AutoDetectsConfig(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("initial commit")
	repo.CreateTag("1.0.0", sha)
	repo.WriteConfig("long: true\n")

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path()})
	require.NoError(t, err)
	require.Equal(t, "1.0.0-0-g"+sha[:7], result.Description)
	require.Equal(t, "true", result.Variables["IsDirty"], "the untracked config file dirties the work tree")
}

func TestDescribe_InvalidConfigPath(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.AddCommit("initial commit")

	_, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path(), ConfigPath: "/nonexistent/config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "loading configuration")
}

func TestDescribe_InvalidPrefix(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.AddCommit("initial commit")

	_, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path(), Prefix: strPtr("not a prefix")})
	require.Error(t, err)
}

func TestDescribe_Explain(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("initial commit")
	repo.CreateTag("v1.0.0", sha)
	repo.AddCommit("next")

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path(), Explain: true})
	require.NoError(t, err)
	require.Contains(t, result.Explanation, "Candidates:")
	require.Contains(t, result.Explanation, "v1.0.0")
	require.Contains(t, result.Explanation, "Result: "+result.Variables["Version"])
}

func TestDescribe_EmptyRepository(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	result, err := sdk.Describe(sdk.LocalOptions{Path: repo.Path()})
	require.NoError(t, err)
	require.True(t, result.Details.Empty)
	require.Equal(t, "unspecified", result.Variables["Version"])
}

func TestVersion_Memoized(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.AddCommit("initial commit")
	repo.CreateTag("svc-1.0.0", sha)

	v, err := sdk.Version(context.Background(), repo.Path(), "svc-")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v)

	repo.CreateTag("svc-1.1.0", repo.AddCommit("next"))
	v, err = sdk.Version(context.Background(), repo.Path(), "svc-")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v, "cached until forgotten")

	sdk.Forget(repo.Path(), "svc-")
	v, err = sdk.Version(context.Background(), repo.Path(), "svc-")
	require.NoError(t, err)
	require.Equal(t, "1.1.0", v)
}

func TestVersion_InvalidPrefix(t *testing.T) {
	_, err := sdk.Version(context.Background(), t.TempDir(), "bad prefix")
	require.Error(t, err)
}

func TestDescribeRemote_MissingOwner(t *testing.T) {
	_, err := sdk.DescribeRemote(sdk.RemoteOptions{Repo: "myrepo", Token: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner and repo are required")
}

func TestDescribeRemote_MissingRepo(t *testing.T) {
	_, err := sdk.DescribeRemote(sdk.RemoteOptions{Owner: "myorg", Token: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner and repo are required")
}

func TestDescribeRemote_NoAuth(t *testing.T) {
	for _, k := range []string{"GITHUB_TOKEN", "GITHUB_API_URL", "GH_APP_ID", "GH_APP_PRIVATE_KEY"} {
		t.Setenv(k, "")
	}

	_, err := sdk.DescribeRemote(sdk.RemoteOptions{Owner: "myorg", Repo: "myrepo"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating GitHub client")
}

const (
	shaA = "1111111111111111111111111111111111111111"
	shaB = "2222222222222222222222222222222222222222"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func commitNode(sha, date string, parents ...string) map[string]interface{} {
	ps := make([]map[string]interface{}, 0, len(parents))
	for _, p := range parents {
		ps = append(ps, map[string]interface{}{"oid": p})
	}
	return map[string]interface{}{
		"__typename":    "Commit",
		"oid":           sha,
		"message":       "commit",
		"committedDate": date,
		"parents":       map[string]interface{}{"nodes": ps},
	}
}

// newMockServer serves a two-commit history on develop with the root
// commit tagged by an annotated rel/0.9.0 and remote config prefix rel/.
func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/myorg/myrepo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"default_branch": "develop"})
	})
	mux.HandleFunc("/api/v3/repos/myorg/myrepo/commits/develop", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shaB))
	})
	mux.HandleFunc("/api/v3/repos/myorg/myrepo/branches/develop", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"name": "develop",
			"commit": map[string]interface{}{
				"sha":     shaB,
				"commit":  map[string]interface{}{"committer": map[string]interface{}{"date": "2025-02-02T00:00:00Z"}},
				"parents": []map[string]interface{}{{"sha": shaA}},
			},
		})
	})
	mux.HandleFunc("/api/v3/repos/myorg/myrepo/contents/gitversion.yml", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("prefix: rel/\n")),
		})
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req.Variables["oid"]; ok {
			writeJSON(w, map[string]interface{}{
				"data": map[string]interface{}{
					"repository": map[string]interface{}{
						"object": map[string]interface{}{
							"history": map[string]interface{}{
								"nodes": []interface{}{
									commitNode(shaB, "2025-02-02T00:00:00Z", shaA),
									commitNode(shaA, "2025-02-01T00:00:00Z"),
								},
							},
						},
					},
				},
			})
			return
		}
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"repository": map[string]interface{}{
					"refs": map[string]interface{}{
						"nodes": []interface{}{
							map[string]interface{}{
								"name": "rel/0.9.0",
								"target": map[string]interface{}{
									"__typename": "Tag",
									"oid":        "3333333333333333333333333333333333333333",
									"tagger":     map[string]interface{}{"date": "2025-02-01T12:00:00Z"},
									"target":     commitNode(shaA, "2025-02-01T00:00:00Z"),
								},
							},
							map[string]interface{}{"name": "other", "target": commitNode(shaB, "2025-02-02T00:00:00Z", shaA)},
						},
						"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
					},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDescribeRemote_WithMockServer(t *testing.T) {
	server := newMockServer(t)

	result, err := sdk.DescribeRemote(sdk.RemoteOptions{
		Owner:      "myorg",
		Repo:       "myrepo",
		Token:      "test-token",
		BaseURL:    server.URL + "/",
		MaxRetries: -1,
		Explain:    true,
	})
	require.NoError(t, err)
	require.Equal(t, "0.9.0-1-g"+shaB[:7], result.Description)
	require.Equal(t, "develop", result.Variables["BranchName"])
	require.Equal(t, shaB, result.Variables["GitHashFull"])
	require.Equal(t, "false", result.Variables["IsDirty"])
	require.Contains(t, result.Explanation, "annotated")
}

func TestDescribeRemote_PrefixOverride(t *testing.T) {
	server := newMockServer(t)

	result, err := sdk.DescribeRemote(sdk.RemoteOptions{
		Owner:   "myorg",
		Repo:    "myrepo",
		Token:   "test-token",
		BaseURL: server.URL + "/",
		Ref:     "develop",
		Prefix:  strPtr(""),
	})
	require.NoError(t, err)
	require.Equal(t, "other", result.Description)
}

func TestDescribeRemote_LocalConfigPath(t *testing.T) {
	server := newMockServer(t)

	configPath := filepath.Join(t.TempDir(), "gitversion.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("long = true\n"), 0o644))

	result, err := sdk.DescribeRemote(sdk.RemoteOptions{
		Owner:      "myorg",
		Repo:       "myrepo",
		Token:      "test-token",
		BaseURL:    server.URL + "/",
		ConfigPath: configPath,
	})
	require.NoError(t, err)
	require.Equal(t, "other-0-g"+shaB[:7], result.Description, "the local file replaces the remote one")
}
