package repofetcher

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidRepoURL is returned when the repository URL cannot be parsed.
var ErrInvalidRepoURL = errors.New("invalid repository URL")

// ParseOwnerAndRepo extracts the owner and repository name from a
// repository URL. HTTPS and scp-like SSH forms are accepted:
//
//	https://github.com/example/testrepo1.git -> ("example", "testrepo1")
//	git@github.com:example/testrepo1.git     -> ("example", "testrepo1")
func ParseOwnerAndRepo(repoURL string) (owner, repo string, err error) {
	path, ok := repoPath(strings.TrimSpace(repoURL))
	if !ok {
		return "", "", ErrInvalidRepoURL
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidRepoURL
	}
	return parts[0], parts[1], nil
}

func repoPath(repoURL string) (string, bool) {
	if repoURL == "" {
		return "", false
	}
	// scp-like syntax: user@host:owner/repo
	if !strings.Contains(repoURL, "://") {
		if at := strings.Index(repoURL, "@"); at >= 0 {
			if colon := strings.Index(repoURL[at:], ":"); colon >= 0 {
				return repoURL[at+colon+1:], true
			}
		}
		return "", false
	}
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Path, true
}
