package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockGitHubServer creates a test HTTP server that mimics GitHub API
// release endpoints.
func mockGitHubServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Resolver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resolver := New(WithBaseURL(server.URL + "/"))
	return server, resolver
}

func TestResolveLatest(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/orca-dev/orca-cli/releases/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tag_name": "v1.2.3"}`)
	})

	info, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Tag != "v1.2.3" {
		t.Errorf("Tag = %q, want v1.2.3", info.Tag)
	}
	if info.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", info.Version)
	}
}

func TestResolveLatestLiteralAlias(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/orca-dev/orca-cli/releases/latest" {
			t.Errorf("literal \"latest\" must query the latest alias, got path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tag_name": "v2.0.0"}`)
	})

	info, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "latest")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Tag == "latest" {
		t.Error("resolved tag must be concrete, not the literal \"latest\"")
	}
	if info.Tag != "v2.0.0" {
		t.Errorf("Tag = %q, want v2.0.0", info.Tag)
	}
}

func TestResolveSpecificTag(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/orca-dev/orca-cli/releases/tags/v1.2.3" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"tag_name": "v1.2.3"}`)
	})

	info, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "v1.2.3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Tag != "v1.2.3" || info.Version != "1.2.3" {
		t.Errorf("got %+v, want tag v1.2.3 version 1.2.3", info)
	}
}

func TestResolveRetriesWithVPrefix(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/orca-dev/orca-cli/releases/tags/1.2.3":
			http.NotFound(w, r)
		case "/repos/orca-dev/orca-cli/releases/tags/v1.2.3":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"tag_name": "v1.2.3"}`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	info, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "1.2.3")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Tag != "v1.2.3" {
		t.Errorf("Tag = %q, want v1.2.3", info.Tag)
	}
}

func TestResolveTagNotFound(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "v9.9.9")
	if err == nil {
		t.Fatal("expected error for missing tag, got nil")
	}

	var resErr *ResolverError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolverError, got %T", err)
	}
	if resErr.Type != ErrTypeNotFound {
		t.Errorf("Type = %v, want ErrTypeNotFound", resErr.Type)
	}
	if resErr.Suggestion() == "" {
		t.Error("expected a suggestion for not-found errors")
	}
}

func TestResolveMissingTagName(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "release without tag"}`)
	})

	_, err := resolver.Resolve(context.Background(), "orca-dev/orca-cli", "")
	if err == nil {
		t.Fatal("expected error for release without tag_name, got nil")
	}

	var resErr *ResolverError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected *ResolverError, got %T", err)
	}
	if resErr.Type != ErrTypeParsing {
		t.Errorf("Type = %v, want ErrTypeParsing", resErr.Type)
	}
}

func TestResolveInvalidRepoSlug(t *testing.T) {
	resolver := New()

	for _, slug := range []string{"", "orca-cli", "a/b/c", "/repo", "owner/"} {
		if _, err := resolver.Resolve(context.Background(), slug, ""); err == nil {
			t.Errorf("expected error for slug %q, got nil", slug)
		}
	}
}

func TestListVersionsSortedNewestFirst(t *testing.T) {
	_, resolver := mockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/orca-dev/orca-cli/releases" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"tag_name": "v1.0.0"},
			{"tag_name": "v1.2.0"},
			{"tag_name": "nightly"},
			{"tag_name": "v1.10.0"}
		]`)
	})

	versions, err := resolver.ListVersions(context.Background(), "orca-dev/orca-cli")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}

	want := []string{"v1.10.0", "v1.2.0", "v1.0.0", "nightly"}
	if len(versions) != len(want) {
		t.Fatalf("got %d versions, want %d: %v", len(versions), len(want), versions)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("versions[%d] = %q, want %q", i, versions[i], want[i])
		}
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"v0.1.0-rc.1", "0.1.0-rc.1"},
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.tag); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
