package main

import (
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// readyHandler brings every guild of the session in line with the stored configuration: the commands are
// registered, the tickets are reconciled and the support panels are posted where missing.
func (a *App) readyHandler() func(s *discordgo.Session, r *discordgo.Ready) {
	return func(_ *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username))

		guildIDs := make([]string, 0, len(r.Guilds))
		for _, g := range r.Guilds {
			if a.markKnown(g.ID) {
				guildIDs = append(guildIDs, g.ID)
			}
		}
		monitoring.TotalDiscordGuilds.Set(float64(a.knownCount()))

		for _, id := range guildIDs {
			a.registerCommands(id)
		}

		reports := a.svc.ReconcileAll(a.ctx, guildIDs)
		for _, id := range guildIDs {
			if _, ok := reports[id]; !ok {
				continue
			}
			a.ensurePanel(id)
		}
	}
}

// guildJoinedHandler handles guilds that were not part of the ready event, which are the guilds the bot is added to
// while running.
func (a *App) guildJoinedHandler() func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Guild == nil || !a.markKnown(g.ID) {
			return
		}

		a.Info(fmt.Sprintf("Joined guild %s", g.Name), slog.String(logging.KeyGuild, g.ID))
		monitoring.TotalDiscordGuilds.Inc()

		a.registerCommands(g.ID)
		if _, err := a.svc.ReconcileGuild(a.ctx, g.ID); err != nil {
			a.Error("Error reconciling guild",
				slog.String(logging.KeyGuild, g.ID),
				slog.String(logging.KeyError, err.Error()),
			)
			return
		}
		a.ensurePanel(g.ID)
	}
}

// guildLeaveHandler forgets guilds the bot was removed from. Guilds that are only unavailable are kept.
func (a *App) guildLeaveHandler() func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Guild == nil || g.Unavailable {
			return
		}
		if !a.forget(g.ID) {
			return
		}

		a.Info(fmt.Sprintf("Left guild %s", g.ID), slog.String(logging.KeyGuild, g.ID))
		monitoring.TotalDiscordGuilds.Dec()
	}
}

func (a *App) registerCommands(guildID string) {
	if _, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, guildID, slashCommands); err != nil {
		a.Error("Error registering slash commands",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

func (a *App) ensurePanel(guildID string) {
	if err := a.svc.EnsureSupportPanel(a.ctx, guildID); err != nil {
		a.Warn("Support panel not posted",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// markKnown records the guild. False is returned when it was already known.
func (a *App) markKnown(guildID string) bool {
	a.guildsMu.Lock()
	defer a.guildsMu.Unlock()
	if _, ok := a.guilds[guildID]; ok {
		return false
	}
	a.guilds[guildID] = struct{}{}
	return true
}

func (a *App) forget(guildID string) bool {
	a.guildsMu.Lock()
	defer a.guildsMu.Unlock()
	if _, ok := a.guilds[guildID]; !ok {
		return false
	}
	delete(a.guilds, guildID)
	return true
}

func (a *App) knownCount() int {
	a.guildsMu.Lock()
	defer a.guildsMu.Unlock()
	return len(a.guilds)
}
