//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mock.gen.go -package=github
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

const encodingNone = "none"

var (
	// ErrNotFound is returned when the repository, ref or file does not exist.
	ErrNotFound = errors.New("github: not found")
	// ErrForbidden is returned when the token may not read the repository,
	// including when its rate limit is exhausted.
	ErrForbidden = errors.New("github: access denied")
)

// GetFileContentParams contains parameters for GetFileContent.
type GetFileContentParams struct {
	Owner string
	Repo  string
	Path  string
	// Ref is a branch, tag or commit. Empty means the default branch.
	Ref string
}

// Client defines the interface for interacting with GitHub.
type Client interface {
	GetFileContent(ctx context.Context, params GetFileContentParams) ([]byte, error)
}

// client implements Client using go-github.
type client struct {
	gh *github.Client
}

// New creates a new GitHub client with the given token.
func New(token string) Client {
	return &client{gh: github.NewClient(httpClient(token))}
}

// NewEnterprise creates a client for a GitHub Enterprise Server instance.
func NewEnterprise(token, baseURL string) (Client, error) {
	gh, err := github.NewClient(httpClient(token)).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
	}
	return &client{gh: gh}, nil
}

func httpClient(token string) *http.Client {
	if token == "" {
		return nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(context.Background(), ts)
}

// GetFileContent retrieves the content of a file from a GitHub repository.
func (c *client) GetFileContent(ctx context.Context, params GetFileContentParams) ([]byte, error) {
	fileContent, _, _, err := c.gh.Repositories.GetContents(
		ctx, params.Owner, params.Repo, params.Path,
		&github.RepositoryContentGetOptions{Ref: params.Ref},
	)
	if err != nil {
		return nil, classifyError(err)
	}
	if fileContent == nil {
		// The path is a directory.
		return nil, fmt.Errorf("%w: %s is not a file", ErrNotFound, params.Path)
	}
	if fileContent.GetEncoding() == encodingNone {
		// Files over 1 MB come back without content; read the blob instead.
		raw, _, err := c.gh.Git.GetBlobRaw(ctx, params.Owner, params.Repo, fileContent.GetSHA())
		if err != nil {
			return nil, classifyError(err)
		}
		return raw, nil
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// classifyError maps GitHub API failures onto ErrNotFound and ErrForbidden.
// Other errors are returned unchanged.
func classifyError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		}
	}
	return err
}
