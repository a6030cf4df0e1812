package chat

import "context"

// Notifier is the chat-platform boundary. Staging operations call it
// fire-and-forget: a failed notification is logged, never propagated into the
// tournament workflow.
type Notifier interface {
	// CreateTournamentSpace ensures a category exists for the tournament and
	// creates one private text channel per group under it.
	CreateTournamentSpace(ctx context.Context, tournamentID int, tournamentName string, groupNames []string) error

	// Announce posts a message to the platform's announcement channel.
	Announce(ctx context.Context, message string) error
}

// NoopNotifier is used when the chat integration is not configured.
type NoopNotifier struct{}

func (NoopNotifier) CreateTournamentSpace(context.Context, int, string, []string) error {
	return nil
}

func (NoopNotifier) Announce(context.Context, string) error { return nil }
