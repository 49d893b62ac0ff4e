// Command devserver runs both roster endpoints on a local HTTP server,
// mounted at the same paths they have behind API Gateway.
package main

import (
	"net/http"
	"os"

	"github.com/opolis/roster/api"
	"github.com/opolis/roster/config"

	"github.com/aws/aws-sdk-go/aws/session"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		useAWS     bool
	)

	cmd := &cobra.Command{
		Use:          "devserver",
		Short:        "Serve the roster endpoints locally",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			var sess *session.Session
			if useAWS {
				var err error
				if sess, err = session.NewSession(); err != nil {
					return err
				}
			}

			entry := log.WithFields(log.Fields{"function": "devserver"})
			server := api.New(entry, cfg, sess)

			entry.Infoln("listening on", addr)
			return http.ListenAndServe(addr, newMux(entry, server))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "Listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default: read OWNER, REPO, ... from the environment)")
	cmd.Flags().BoolVar(&useAWS, "aws", false, "Use the ambient AWS credentials for SSM tokens, S3 backups and Slack")

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	return cmd
}

func newMux(entry *log.Entry, server *api.Server) *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("/api/roster", api.HTTPHandler(api.Recover(entry, server.Roster)))
	m.Handle("/api/update", api.HTTPHandler(api.Recover(entry, server.Update)))
	m.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return m
}
