package gitdriver

import (
	"fmt"
	"strings"
)

// RemoteRef is a parsed owner/repo pair extracted from a git remote URL.
type RemoteRef struct {
	Host  string
	Owner string
	Repo  string
}

// remoteURLPrefixes are the URL schemes parsed the same way: strip the
// scheme, drop any userinfo before an "@", then split host from path.
var remoteURLPrefixes = []string{"https://", "http://", "ssh://", "git://"}

// ParseRemoteURL parses the common git remote URL forms (spec.md §6):
//
//	git@<host>:owner/repo.git
//	https://<host>/owner/repo.git
//	http://<host>/owner/repo.git
//	ssh://<host>/owner/repo.git
//	git://<host>/owner/repo.git
//
// and returns the host, owner, and repo name with any ".git" suffix
// stripped, provided host (case-insensitively) appears in supportedHosts.
// If supportedHosts is empty, every host is accepted.
//
// A malformed URL (one that doesn't match any of the shapes above) is
// reported with ErrInvalidRemoteURL. A well-formed URL whose host is not
// in supportedHosts is not an error: it returns the zero RemoteRef and a
// nil error, mirroring RemoteURL's "no such remote" convention, since
// spec.md §4.2/§8 treats an unsupported host as "parses to null", not a
// thrown failure.
//
// It is a pure function with no network or filesystem access, so callers
// can resolve owner/repo without shelling out.
func ParseRemoteURL(raw string, supportedHosts []string) (RemoteRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RemoteRef{}, fmt.Errorf("%w: empty", ErrInvalidRemoteURL)
	}

	var host, path string
	switch {
	case strings.HasPrefix(raw, "git@"):
		rest := strings.TrimPrefix(raw, "git@")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return RemoteRef{}, fmt.Errorf("%w: %s", ErrInvalidRemoteURL, raw)
		}
		host, path = parts[0], parts[1]
	case hasAnyPrefix(raw, remoteURLPrefixes):
		rest := raw
		for _, prefix := range remoteURLPrefixes {
			rest = strings.TrimPrefix(rest, prefix)
		}
		if at := strings.Index(rest, "@"); at != -1 {
			rest = rest[at+1:]
		}
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			return RemoteRef{}, fmt.Errorf("%w: %s", ErrInvalidRemoteURL, raw)
		}
		host, path = parts[0], parts[1]
	default:
		return RemoteRef{}, fmt.Errorf("%w: %s", ErrInvalidRemoteURL, raw)
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return RemoteRef{}, fmt.Errorf("%w: %s", ErrInvalidRemoteURL, raw)
	}

	if !hostSupported(host, supportedHosts) {
		return RemoteRef{}, nil
	}
	return RemoteRef{Host: host, Owner: segments[0], Repo: segments[1]}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// hostSupported reports whether host is in the allow-list, case
// insensitively. An empty allow-list permits every host, matching
// config.Config.IsSupportedHost's default-open behavior.
func hostSupported(host string, supportedHosts []string) bool {
	if len(supportedHosts) == 0 {
		return true
	}
	for _, h := range supportedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}
