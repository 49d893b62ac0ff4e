package api

import (
	"context"
	"net/http"

	"github.com/opolis/roster/archive"
	"github.com/opolis/roster/config"
	"github.com/opolis/roster/notify"
	"github.com/opolis/roster/repo"
	"github.com/opolis/roster/secure"
	"github.com/opolis/roster/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/session"
	log "github.com/sirupsen/logrus"
)

// New prepares a Server from cfg. sess may be nil when running outside
// AWS, in which case the token must be set directly and the archive and
// notifier stay disabled.
func New(entry *log.Entry, cfg config.Config, sess *session.Session) *Server {
	var (
		store types.SecureStore
		arch  types.Archive
	)

	if sess != nil {
		store = secure.NewAWSSecureStore(sess)
		if cfg.BackupBucket != "" {
			arch = archive.NewS3Archive(entry, sess, cfg.BackupBucket, cfg.BackupPrefix)
		}
	}

	return newServer(entry, cfg, store, arch)
}

// newServer never fails: an unreadable token leaves the credential empty
// so GitHub answers with its own 401, and an unreadable Slack token only
// disables the notifier.
func newServer(entry *log.Entry, cfg config.Config, store types.SecureStore, arch types.Archive) *Server {
	token, err := cfg.ResolveToken(store)
	if err != nil {
		entry.Warnln("continuing without github token:", err.Error())
	}

	server := &Server{
		Config:  cfg,
		Repo:    repo.NewGitHubRepository(entry, cfg.APIBase, cfg.Owner, cfg.Repo, token),
		Archive: arch,
		Log:     entry,
	}

	if cfg.SlackChannel != "" && store != nil {
		slackToken, err := store.Get(cfg.SlackTokenKey)
		if err != nil {
			entry.Warnln("slack notifications disabled:", err.Error())
		} else {
			server.Notifier = notify.NewSlackNotifier(slackToken, cfg.SlackChannel)
		}
	}

	entry.WithFields(log.Fields{
		"owner":   cfg.Owner,
		"repo":    cfg.Repo,
		"branch":  cfg.Branch,
		"file":    cfg.Path,
		"archive": server.Archive != nil,
		"notify":  server.Notifier != nil,
	}).Infoln("roster handler ready")

	return server
}

// Recover turns a panic in fn into a 500 response.
func Recover(entry *log.Entry, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				entry.Errorln("recovered from panic:", r)
				resp, err = errorResponse(http.StatusInternalServerError, "internal error"), nil
			}
		}()

		return fn(ctx, request)
	}
}
