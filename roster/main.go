// Command roster is the Lambda behind GET /api/roster.
package main

import (
	"github.com/opolis/roster/api"
	"github.com/opolis/roster/config"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{DisableTimestamp: true})
}

func main() {
	// AWS session
	sess := session.Must(session.NewSession())

	entry := log.WithFields(log.Fields{"function": "roster"})
	server := api.New(entry, config.FromEnv(), sess)

	lambda.Start(api.Recover(entry, server.Roster))
}
