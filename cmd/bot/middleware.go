package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/request"
	"github.com/gorilla/mux"
)

// slashProcessor is the processor for slash commands.
type slashProcessor func(a IApp, i *discordgo.InteractionCreate) error

// componentProcessor is the processor for buttons and select menus.
type componentProcessor func(a IApp, i *discordgo.InteractionCreate) error

// prefixProcessor is the processor for prefix commands. args is the text after the command name.
type prefixProcessor func(a IApp, m *discordgo.MessageCreate, args string) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(a IApp, handler Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// Deferred so the status code is known.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				request.InternalErrorHandler(a.Log(), fmt.Errorf("%v", rec)).ServeHTTP(cw, r)
			}
		}()

		handler(cw, r)
	}
}

// recoverDiscord logs a panic in a Discord handler instead of crashing the process.
func recoverDiscord(a IApp, command string) {
	if rec := recover(); rec != nil {
		monitoring.DiscordCommandErrors.WithLabelValues(command, "panic").Inc()
		a.Log().Error("Panic in discord handler",
			slog.String("command", command),
			slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
			slog.String("stack", string(debug.Stack())),
		)
	}
}

// interactionHandler routes slash commands by name, and buttons and select menus by custom ID. Component IDs that are
// not found exactly are matched by prefix.
func interactionHandler(
	a IApp,
	slashControllers map[string]slashProcessor,
	componentControllers map[string]componentProcessor,
	componentPrefixes map[string]componentProcessor,
) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			name := i.ApplicationCommandData().Name
			processor, ok := slashControllers[name]
			if !ok {
				a.Log().Error(fmt.Sprintf("No controller found for command %s", name), slog.String("command", name))
				if err := respondSlashError(a, i); err != nil {
					a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
				return
			}
			runInteraction(a, i, "/"+name, processor)

		case discordgo.InteractionMessageComponent:
			id := i.MessageComponentData().CustomID
			if processor, ok := componentControllers[id]; ok {
				runInteraction(a, i, id, processor)
				return
			}
			for prefix, processor := range componentPrefixes {
				if strings.HasPrefix(id, prefix) {
					runInteraction(a, i, prefix, processor)
					return
				}
			}
			a.Log().Warn("No controller found for component", slog.String("custom_id", id))
		}
	}
}

func runInteraction(a IApp, i *discordgo.InteractionCreate, command string, processor func(a IApp, i *discordgo.InteractionCreate) error) {
	defer recoverDiscord(a, command)

	t := time.Now()
	defer func() {
		monitoring.DiscordCommandDuration.WithLabelValues(command).Observe(time.Since(t).Seconds())
	}()

	if i.GuildID == "" {
		if err := respondEphemeral(a, i, messages.ErrGuildOnly); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := processor(a, i); err != nil {
		monitoring.DiscordCommandErrors.WithLabelValues(command, "error").Inc()
		a.Log().Error(fmt.Sprintf("Error processing command %s", command),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyChannel, i.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)

		if err := respondSlashError(a, i); err != nil {
			a.Log().Debug("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// messageHandler routes prefix commands by name. Messages from bots and direct messages are ignored.
func messageHandler(a IApp, controllers map[string]prefixProcessor) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot || m.GuildID == "" {
			return
		}

		botID := ""
		if s.State != nil && s.State.User != nil {
			botID = s.State.User.ID
		}
		name, args, ok := parsePrefixCommand(m.Content, botID)
		if !ok {
			return
		}
		processor, ok := controllers[name]
		if !ok {
			return
		}

		command := commandPrefix + name
		defer recoverDiscord(a, command)

		t := time.Now()
		defer func() {
			monitoring.DiscordCommandDuration.WithLabelValues(command).Observe(time.Since(t).Seconds())
		}()

		if err := processor(a, m, args); err != nil {
			monitoring.DiscordCommandErrors.WithLabelValues(command, "error").Inc()
			a.Log().Error(fmt.Sprintf("Error processing command %s", command),
				slog.String(logging.KeyGuild, m.GuildID),
				slog.String(logging.KeyChannel, m.ChannelID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}
