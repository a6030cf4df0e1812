package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
)

type DiscordConfig struct {
	BotToken          string
	GuildID           string
	AnnounceChannelID string
}

type discordNotifier struct {
	session  *discordgo.Session
	guildID  string
	announce string

	mu         sync.Mutex
	categories map[int]string // tournament ID -> category channel ID
}

// NewDiscordNotifier builds a Notifier over the Discord REST API. The session
// is used purely for HTTP calls; no gateway connection is opened.
func NewDiscordNotifier(cfg DiscordConfig) (Notifier, error) {
	if cfg.BotToken == "" || cfg.GuildID == "" {
		return nil, errors.New("invalid Discord configuration: bot token and guild id are required")
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return &discordNotifier{
		session:    session,
		guildID:    cfg.GuildID,
		announce:   cfg.AnnounceChannelID,
		categories: make(map[int]string),
	}, nil
}

func (n *discordNotifier) CreateTournamentSpace(ctx context.Context, tournamentID int, tournamentName string, groupNames []string) error {
	categoryID, err := n.ensureCategory(ctx, tournamentID, tournamentName)
	if err != nil {
		return err
	}

	// Group channels are private: @everyone loses VIEW_CHANNEL, the bot grants
	// access per team later once Discord IDs are mapped.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   n.guildID, // @everyone shares the guild's ID
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, name := range groupNames {
		name := name
		g.Go(func() error {
			_, err := n.session.GuildChannelCreateComplex(n.guildID, discordgo.GuildChannelCreateData{
				Name:                 channelName(name),
				Type:                 discordgo.ChannelTypeGuildText,
				ParentID:             categoryID,
				PermissionOverwrites: overwrites,
			}, discordgo.WithContext(gCtx))
			if err != nil {
				return fmt.Errorf("failed to create channel for group %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (n *discordNotifier) ensureCategory(ctx context.Context, tournamentID int, tournamentName string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if id, ok := n.categories[tournamentID]; ok {
		return id, nil
	}

	category, err := n.session.GuildChannelCreateComplex(n.guildID, discordgo.GuildChannelCreateData{
		Name: tournamentName,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create category for tournament %d: %w", tournamentID, err)
	}

	n.categories[tournamentID] = category.ID
	return category.ID, nil
}

func (n *discordNotifier) Announce(ctx context.Context, message string) error {
	if n.announce == "" {
		return nil
	}
	_, err := n.session.ChannelMessageSend(n.announce, message, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send announcement: %w", err)
	}
	return nil
}

func channelName(groupName string) string {
	return strings.ReplaceAll(strings.ToLower(groupName), " ", "-")
}
