package gitdriver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var githubOnly = []string{"github.com"}

func TestParseRemoteURL_SSHForm(t *testing.T) {
	ref, err := ParseRemoteURL("git@github.com:acme/widgets.git", githubOnly)
	require.NoError(t, err)
	require.Equal(t, RemoteRef{Host: "github.com", Owner: "acme", Repo: "widgets"}, ref)
}

func TestParseRemoteURL_HTTPSForm(t *testing.T) {
	ref, err := ParseRemoteURL("https://github.com/acme/widgets.git", githubOnly)
	require.NoError(t, err)
	require.Equal(t, RemoteRef{Host: "github.com", Owner: "acme", Repo: "widgets"}, ref)
}

func TestParseRemoteURL_HTTPSNoSuffix(t *testing.T) {
	ref, err := ParseRemoteURL("https://github.com/acme/widgets", githubOnly)
	require.NoError(t, err)
	require.Equal(t, "widgets", ref.Repo)
}

func TestParseRemoteURL_GitProtocolForm(t *testing.T) {
	ref, err := ParseRemoteURL("git://github.com/acme/widgets.git", githubOnly)
	require.NoError(t, err)
	require.Equal(t, RemoteRef{Host: "github.com", Owner: "acme", Repo: "widgets"}, ref)
}

func TestParseRemoteURL_Invalid(t *testing.T) {
	_, err := ParseRemoteURL("not a url", githubOnly)
	require.Error(t, err)

	_, err = ParseRemoteURL("", githubOnly)
	require.Error(t, err)
}

// TestParseRemoteURL_UnsupportedHost checks spec.md §8's "returns null,
// never throws" property: a well-formed URL against a host outside the
// configured set reports no error and the zero RemoteRef.
func TestParseRemoteURL_UnsupportedHost(t *testing.T) {
	ref, err := ParseRemoteURL("https://example.com/foo/bar.git", githubOnly)
	require.NoError(t, err)
	require.Equal(t, RemoteRef{}, ref)
}

// TestParseRemoteURL_EmptyAllowListPermitsAnyHost mirrors
// config.Config.IsSupportedHost's "empty allow-list permits every host"
// default.
func TestParseRemoteURL_EmptyAllowListPermitsAnyHost(t *testing.T) {
	ref, err := ParseRemoteURL("https://example.com/foo/bar.git", nil)
	require.NoError(t, err)
	require.Equal(t, RemoteRef{Host: "example.com", Owner: "foo", Repo: "bar"}, ref)
}

// TestParseRemoteURL_RoundTrip checks that any owner/repo pair formatted as
// an https, ssh (git@) or git:// remote URL parses back to the same pair
// (spec.md §8 round-trip property for the remote-URL parser).
func TestParseRemoteURL_RoundTrip(t *testing.T) {
	safeSegment := rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9._-]{0,20}`)
	rapid.Check(t, func(t *rapid.T) {
		host := "github.com"
		scheme := rapid.SampledFrom([]string{"https", "ssh", "git"}).Draw(t, "scheme")
		owner := safeSegment.Draw(t, "owner")
		repo := safeSegment.Draw(t, "repo")

		url := fmt.Sprintf("%s://%s/%s/%s.git", scheme, host, owner, repo)
		if scheme == "ssh" {
			url = fmt.Sprintf("git@%s:%s/%s.git", host, owner, repo)
		}
		ref, err := ParseRemoteURL(url, githubOnly)
		require.NoError(t, err)
		require.Equal(t, host, ref.Host)
		require.Equal(t, owner, ref.Owner)
		require.Equal(t, repo, ref.Repo)
	})
}
