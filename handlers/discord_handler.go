package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gamerpro/gamerpro/services"
)

// DiscordInteractionsHandler serves Discord's outgoing-webhook interactions
// endpoint: slash commands arrive as signed HTTP requests, not over the
// gateway. Requests failing the ed25519 signature check are rejected, which
// Discord probes during endpoint registration.
type DiscordInteractionsHandler struct {
	publicKey         ed25519.PublicKey
	statsService      services.StatsService
	tournamentService services.TournamentService
}

func NewDiscordInteractionsHandler(publicKeyHex string, statsService services.StatsService, tournamentService services.TournamentService) (*DiscordInteractionsHandler, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Discord public key")
	}
	return &DiscordInteractionsHandler{
		publicKey:         key,
		statsService:      statsService,
		tournamentService: tournamentService,
	}, nil
}

func (h *DiscordInteractionsHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, h.publicKey) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		h.respond(w, r, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommand:
		h.handleCommand(w, r, interaction.ApplicationCommandData())

	default:
		badRequestResponse(w, r, fmt.Errorf("unsupported interaction type %d", interaction.Type))
	}
}

func (h *DiscordInteractionsHandler) handleCommand(w http.ResponseWriter, r *http.Request, data discordgo.ApplicationCommandInteractionData) {
	var content string

	switch data.Name {
	case "gamerpro":
		tournaments, err := h.tournamentService.List(r.Context())
		if err != nil {
			content = "Could not load tournaments right now, try again later."
			break
		}
		if len(tournaments) == 0 {
			content = "No tournaments are open right now."
			break
		}
		lines := make([]string, 0, len(tournaments))
		for _, t := range tournaments {
			lines = append(lines, fmt.Sprintf("**%s** (%s) | prize: %s, stage: %s", t.Name, t.Game, t.Prize, t.CurrentStage))
		}
		content = "Current tournaments:\n" + strings.Join(lines, "\n")

	case "stats":
		stats, err := h.statsService.PlatformStats(r.Context())
		if err != nil {
			content = "Could not load stats right now, try again later."
			break
		}
		content = fmt.Sprintf("📊 GamerPro: %d tournaments, %d teams, %d matches played",
			stats.Tournaments, stats.ActiveTeams, stats.MatchesPlayed)

	default:
		content = fmt.Sprintf("Unknown command: /%s", data.Name)
	}

	h.respond(w, r, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (h *DiscordInteractionsHandler) respond(w http.ResponseWriter, r *http.Request, response *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		serverErrorResponse(w, r, err)
	}
}
