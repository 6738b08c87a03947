package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileReport describes what a reconciliation changed in a guild.
type ReconcileReport struct {
	// GuildID is the reconciled guild.
	GuildID string

	// OrphansRemoved are the registry keys removed because their channel no longer exists.
	OrphansRemoved []string

	// Migrated maps legacy channel name keys to the channel IDs they were rekeyed to.
	Migrated map[string]string

	// Backfilled are the ID keys whose entry was missing the channel ID.
	Backfilled []string

	// Dropped are the legacy keys that could not be resolved to a channel and were removed.
	Dropped []string

	// Reattached is the number of panels bound for interaction routing.
	Reattached int

	// Rerendered is the number of panels that were edited to show the current status.
	Rerendered int
}

// Changed reports whether the reconciliation changed the registry or any panel.
func (r *ReconcileReport) Changed() bool {
	return len(r.OrphansRemoved) > 0 || len(r.Migrated) > 0 || len(r.Backfilled) > 0 || len(r.Dropped) > 0 ||
		r.Rerendered > 0
}

// ReconcileGuild repairs the registry of the guild against the live channels. It removes entries whose channel is
// gone, rekeys legacy entries to channel IDs and binds the panels of the surviving tickets, updating the claimed ones.
// Running it again without changes on the platform changes nothing.
func (s *Service) ReconcileGuild(ctx context.Context, guildID string) (*ReconcileReport, error) {
	t := prometheus.NewTimer(reconcileLatency)
	defer t.ObserveDuration()

	l := s.guildLogger(guildID)
	report := &ReconcileReport{
		GuildID:  guildID,
		Migrated: make(map[string]string),
	}

	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return nil, platformError("list channels", err)
	}

	s.removeOrphans(ctx, guildID, channels, report)
	s.migrateKeys(ctx, guildID, channels, report)
	if err := s.reattach(ctx, guildID, channels, report); err != nil {
		return report, err
	}

	if report.Changed() {
		l.Info("Guild reconciled",
			slog.Int("orphans_removed", len(report.OrphansRemoved)),
			slog.Int("migrated", len(report.Migrated)),
			slog.Int("dropped", len(report.Dropped)),
			slog.Int("reattached", report.Reattached),
			slog.Int("rerendered", report.Rerendered),
		)
	}
	if len(report.Dropped) > 0 {
		l.Warn("Dropped registry entries that could not be migrated", slog.Any("keys", report.Dropped))
	}
	return report, nil
}

// removeOrphans deletes the entries whose channel cannot be found by ID or by last known name, saving once.
func (s *Service) removeOrphans(ctx context.Context, guildID string, channels []*discordgo.Channel, report *ReconcileReport) {
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		for k, e := range g.OpenTickets {
			id, name := entryChannel(k, e)
			if findChannel(channels, id, name) == nil {
				delete(g.OpenTickets, k)
				report.OrphansRemoved = append(report.OrphansRemoved, k)
			}
		}
	})
	if len(report.OrphansRemoved) == 0 {
		return
	}

	sort.Strings(report.OrphansRemoved)
	orphansRemoved.Add(float64(len(report.OrphansRemoved)))
	s.store.Save(ctx)
}

// migrateKeys rekeys entries stored under a channel name to the channel ID. ID keys are kept and get their channel ID
// filled in from the key when it is missing.
func (s *Service) migrateKeys(ctx context.Context, guildID string, channels []*discordgo.Channel, report *ReconcileReport) {
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)

		migrated := make(map[string]*entities.TicketEntry, len(g.OpenTickets))
		for k, e := range g.OpenTickets {
			if custom.IsNumeric(k) {
				if e.ChannelID.IsZero() {
					e.ChannelID = custom.Snowflake(k)
					report.Backfilled = append(report.Backfilled, k)
				}
				migrated[k] = e
				continue
			}

			ch := findTextChannel(channels, k)
			if ch == nil {
				report.Dropped = append(report.Dropped, k)
				continue
			}
			e.ChannelID = custom.Snowflake(ch.ID)
			e.ChannelName = ch.Name
			migrated[ch.ID] = e
			report.Migrated[k] = ch.ID
		}

		if len(report.Migrated) > 0 || len(report.Dropped) > 0 {
			g.OpenTickets = migrated
		}
	})

	if len(report.Migrated) == 0 && len(report.Dropped) == 0 && len(report.Backfilled) == 0 {
		return
	}

	sort.Strings(report.Dropped)
	sort.Strings(report.Backfilled)
	entriesMigrated.Add(float64(len(report.Migrated)))
	entriesDropped.Add(float64(len(report.Dropped)))
	s.store.Save(ctx)
}

// reattach binds the panel of every surviving ticket and updates the panels of claimed tickets that do not show their
// claimant. Platform calls are paced by the rate limiter.
func (s *Service) reattach(ctx context.Context, guildID string, channels []*discordgo.Channel, report *ReconcileReport) error {
	var entries []*entities.TicketEntry
	s.store.Do(func(doc entities.ConfigDocument) {
		for _, e := range entities.GetOrInit(doc, guildID).OpenTickets {
			entries = append(entries, e.Clone())
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ChannelID < entries[j].ChannelID
	})

	for _, e := range entries {
		if e.MessageID.IsZero() || findChannel(channels, e.ChannelID.String(), "") == nil {
			continue
		}

		l := s.guildLogger(guildID).With(slog.String(logging.KeyChannel, e.ChannelID.String()))

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("reattach interrupted: %w", err)
		}
		msg, err := s.platform.Message(e.ChannelID.String(), e.MessageID.String())
		if errors.Is(err, ErrNotFound) {
			l.Warn("Ticket panel no longer exists", slog.String("message_id", e.MessageID.String()))
			continue
		} else if err != nil {
			l.Error("Error getting ticket panel", slog.String(logging.KeyError, err.Error()))
			continue
		}

		s.bind(msg.ID, guildID, e.ChannelID.String())
		report.Reattached++

		if e.Status() != entities.StatusClaimed || panelUpToDate(msg, e) {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("reattach interrupted: %w", err)
		}
		if _, err := s.platform.EditMessage(TicketMessageEdit(e)); err != nil {
			l.Error("Error updating claimed ticket panel", slog.String(logging.KeyError, err.Error()))
			continue
		}
		report.Rerendered++
	}
	return nil
}

// ReconcileAll reconciles every guild in turn. A guild that fails, or panics, does not stop the others.
func (s *Service) ReconcileAll(ctx context.Context, guildIDs []string) map[string]*ReconcileReport {
	reports := make(map[string]*ReconcileReport, len(guildIDs))
	for _, id := range guildIDs {
		if r := s.reconcileIsolated(ctx, id); r != nil {
			reports[id] = r
		}
	}
	return reports
}

func (s *Service) reconcileIsolated(ctx context.Context, guildID string) (report *ReconcileReport) {
	defer func() {
		if r := recover(); r != nil {
			s.guildLogger(guildID).Error("Panic reconciling guild", slog.String(logging.KeyError, fmt.Sprintf("%v", r)))
			report = nil
		}
	}()

	report, err := s.ReconcileGuild(ctx, guildID)
	if err != nil {
		s.guildLogger(guildID).Error("Error reconciling guild", slog.String(logging.KeyError, err.Error()))
	}
	return report
}
