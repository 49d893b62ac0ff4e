package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/opolis/roster/types"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultBase = "https://api.github.com"

	// GitHub sets encoding to "none" for files over 1MB and omits content.
	encodingNone = "none"
)

type GitHubRepository struct {
	client *http.Client
	base   string
	owner  string
	name   string
	log    *log.Entry
}

func NewGitHubRepository(log *log.Entry, base, owner, name, token string) *GitHubRepository {
	if base == "" {
		base = DefaultBase
	}

	// "token" is passed through unnormalized, giving the
	// 'Authorization: token <value>' form GitHub documents for PATs.
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})

	return &GitHubRepository{
		client: &http.Client{Transport: &oauth2.Transport{Source: source}},
		base:   base,
		owner:  owner,
		name:   name,
		log:    log,
	}
}

// Get fetches path at ref and decodes its content. A non-2xx reply is
// returned as *types.UpstreamError carrying the raw status and body.
func (repo *GitHubRepository) Get(ctx context.Context, ref, path string) (types.Document, error) {
	url := contentsURL(repo.base, repo.owner, repo.name, path, ref)
	repo.log.Infoln("contents get:", url)

	status, contentType, body, err := repo.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.Document{}, err
	}

	if !success(status) {
		return types.Document{}, &types.UpstreamError{StatusCode: status, ContentType: contentType, Body: body}
	}

	var parsed types.ContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.Document{}, fmt.Errorf("decoding contents response: %w", err)
	}

	if parsed.Encoding == encodingNone {
		return types.Document{}, errors.New("file too large for the contents API")
	}

	text, err := Decode(parsed.Content)
	if err != nil {
		return types.Document{}, fmt.Errorf("decoding file content: %w", err)
	}

	return types.Document{Text: string(text), SHA: parsed.SHA}, nil
}

// Put submits commit against path. GitHub performs the hash check; a
// stale commit.SHA comes back as a 409 or 422 *types.UpstreamError.
func (repo *GitHubRepository) Put(ctx context.Context, path string, commit types.Commit) (types.Response, error) {
	url := contentsURL(repo.base, repo.owner, repo.name, path, "")
	repo.log.WithFields(log.Fields{"branch": commit.Branch, "sha": commit.SHA}).Infoln("contents put:", url)

	payload, err := json.Marshal(commit)
	if err != nil {
		return types.Response{}, err
	}

	status, contentType, body, err := repo.do(ctx, http.MethodPut, url, payload)
	if err != nil {
		return types.Response{}, err
	}

	if !success(status) {
		return types.Response{}, &types.UpstreamError{StatusCode: status, ContentType: contentType, Body: body}
	}

	return types.Response{StatusCode: status, ContentType: contentType, Body: body}, nil
}

// do returns the status, Content-Type and body of the reply.
func (repo *GitHubRepository) do(ctx context.Context, method, url string, payload []byte) (int, string, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, "", nil, err
	}

	request.Header.Set("Accept", types.MediaTypeGitHubV3)
	if payload != nil {
		request.Header.Set("Content-Type", types.MediaTypeJSON)
	}

	resp, err := repo.client.Do(request)
	if err != nil {
		return 0, "", nil, fmt.Errorf("making %s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, fmt.Errorf("reading %s response: %w", method, err)
	}

	repo.log.Infoln("github status:", resp.StatusCode)
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
