// Package api holds the two roster endpoints. Both are thin proxies over
// the GitHub contents API: requests are checked for method, forwarded,
// and GitHub's answer is relayed without interpretation.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/opolis/roster/archive"
	"github.com/opolis/roster/config"
	"github.com/opolis/roster/repo"
	"github.com/opolis/roster/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	log "github.com/sirupsen/logrus"
)

// HandlerFunc is the API Gateway proxy signature served by Lambda.
type HandlerFunc func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Server carries the dependencies shared by both endpoints. Archive and
// Notifier are optional.
type Server struct {
	Config   config.Config
	Repo     types.Repository
	Archive  types.Archive
	Notifier types.Notifier
	Log      *log.Entry

	// Now defaults to time.Now.
	Now func() time.Time
}

// Roster returns the current roster text and its hash as
// {"text": ..., "sha": ...}.
func (s *Server) Roster(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := s.requestLog(ctx, request)

	if request.HTTPMethod != http.MethodGet {
		log.Warnln("method not allowed")
		return methodNotAllowed(http.MethodGet), nil
	}

	doc, err := s.Repo.Get(ctx, s.Config.Branch, s.Config.Path)
	if err != nil {
		return failure(log, err), nil
	}

	return jsonResponse(http.StatusOK, doc), nil
}

// Update commits a new roster text. The caller's sha is forwarded so
// GitHub can reject the write if the file changed since it was read.
func (s *Server) Update(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := s.requestLog(ctx, request)

	if request.HTTPMethod != http.MethodPut {
		log.Warnln("method not allowed")
		return methodNotAllowed(http.MethodPut), nil
	}

	input, err := parseUpdate(request)
	if err != nil {
		log.Warnln("bad request:", err.Error())
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	now := s.now().UTC()
	commit := NewCommit(s.Config, input, now)

	if s.Archive != nil {
		s.backup(ctx, log, now, commit.SHA)
	}

	resp, err := s.Repo.Put(ctx, s.Config.Path, commit)
	if err != nil {
		return failure(log, err), nil
	}

	log.Infoln("roster updated", resp.StatusCode)

	if s.Notifier != nil {
		if err := s.Notifier.Notify(s.Config.Path, now.Format(dateLayout)); err != nil {
			log.Warnln("could not send update notification:", err.Error())
		}
	}

	return relay(resp.StatusCode, resp.ContentType, resp.Body), nil
}

const dateLayout = "2006-01-02"

// NewCommit builds the contents API payload for input on day.
func NewCommit(c config.Config, input types.UpdateRequest, day time.Time) types.Commit {
	return types.Commit{
		Message: fmt.Sprintf("%s %s", c.CommitMessage, day.Format(dateLayout)),
		Content: repo.Encode([]byte(input.Content)),
		SHA:     input.SHA,
		Branch:  c.Branch,
	}
}

//
// Helpers
//

// backup copies the stored roster to the archive. It never blocks the
// write that follows. A snapshot whose hash differs from sha is left
// alone: GitHub will reject that write, and the day's backup must not be
// replaced by it.
func (s *Server) backup(ctx context.Context, log *log.Entry, now time.Time, sha string) {
	doc, err := s.Repo.Get(ctx, s.Config.Branch, s.Config.Path)
	if err != nil {
		log.Warnln("could not read roster for backup:", err.Error())
		return
	}

	if doc.SHA != sha {
		log.Infoln("stale sha, skipping backup:", sha)
		return
	}

	name := archive.BackupName(s.Config.Path, now)
	if err := s.Archive.Save(ctx, name, []byte(doc.Text)); err != nil {
		log.Warnln("could not archive roster:", err.Error())
	}
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func (s *Server) requestLog(ctx context.Context, request events.APIGatewayProxyRequest) *log.Entry {
	entry := s.Log
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}

	fields := log.Fields{"method": request.HTTPMethod, "path": request.Path}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields["requestId"] = lc.AwsRequestID
	}

	return entry.WithFields(fields)
}

func parseUpdate(request events.APIGatewayProxyRequest) (types.UpdateRequest, error) {
	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return types.UpdateRequest{}, fmt.Errorf("invalid request body: %w", err)
		}
		body = decoded
	}

	var input types.UpdateRequest
	if err := json.Unmarshal(body, &input); err != nil {
		return types.UpdateRequest{}, fmt.Errorf("invalid request body: %w", err)
	}

	return input, nil
}

// failure relays upstream errors verbatim and reports anything else
// as a bad gateway.
func failure(log *log.Entry, err error) events.APIGatewayProxyResponse {
	var upstream *types.UpstreamError
	if errors.As(err, &upstream) {
		log.Infoln("relaying github error", upstream.StatusCode)
		return relay(upstream.StatusCode, upstream.ContentType, upstream.Body)
	}

	log.Errorln("github request failed:", err.Error())
	return errorResponse(http.StatusBadGateway, err.Error())
}

// relay passes status, body and content type through. An empty content
// type means the body was produced here and is JSON.
func relay(status int, contentType string, body []byte) events.APIGatewayProxyResponse {
	if contentType == "" {
		contentType = types.MediaTypeJSON
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentType},
		Body:       string(body),
	}
}

func jsonResponse(status int, v interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err.Error())
	}

	return relay(status, "", body)
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return relay(status, "", body)
}

func methodNotAllowed(allow string) events.APIGatewayProxyResponse {
	resp := errorResponse(http.StatusMethodNotAllowed, types.ErrMethodNotAllowed)
	resp.Headers["Allow"] = allow
	return resp
}
