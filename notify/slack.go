package notify

import (
	"fmt"

	"github.com/nlopes/slack"
)

// poster is the part of *slack.Client the notifier needs.
type poster interface {
	PostMessage(channel, text string, params slack.PostMessageParameters) (string, string, error)
}

type SlackNotifier struct {
	api     poster
	channel string
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
	}
}

// Notify posts a short message to the configured channel that path was
// updated on date.
func (n *SlackNotifier) Notify(path, date string) error {
	msg := fmt.Sprintf("Roster *%s* was updated from the web (%s)", path, date)
	params := slack.PostMessageParameters{
		Markdown: true,
	}

	_, _, err := n.api.PostMessage(n.channel, msg, params)
	return err
}
