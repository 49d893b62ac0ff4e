package types

import (
	"context"
	"fmt"
)

const (
	ErrMethodNotAllowed = "Method Not Allowed"

	KeyToken      = "roster-github-token"
	KeySlackToken = "bot.slack.token"

	MediaTypeGitHubV3 = "application/vnd.github.v3+json"
	MediaTypeJSON     = "application/json"
)

// Repository provides a means to read and write file content in
// the version control repository.
type Repository interface {
	Get(ctx context.Context, ref, path string) (Document, error)
	Put(ctx context.Context, path string, commit Commit) (Response, error)
}

// SecureStore accesses secure parameters.
type SecureStore interface {
	Get(key string) (string, error)
}

// Archive stores a copy of a roster snapshot before it is overwritten.
type Archive interface {
	Save(ctx context.Context, name string, content []byte) error
}

// Notifier announces an accepted roster write.
type Notifier interface {
	Notify(path, date string) error
}

// Document is one snapshot of the roster file: its decoded text and
// the blob hash GitHub identifies it by.
type Document struct {
	Text string `json:"text"`
	SHA  string `json:"sha"`
}

// UpdateRequest is the body accepted by the update endpoint.
type UpdateRequest struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Commit is the payload of a contents API PUT. Content is base64 encoded.
type Commit struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

// Response is an upstream reply relayed to the caller as-is.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// UpstreamError - semantic type for a non-2xx reply from the repository.
// The status and body are relayed to the caller unchanged.
type UpstreamError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

// ContentResponse references the relevant fields of a contents API GET.
type ContentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
}
