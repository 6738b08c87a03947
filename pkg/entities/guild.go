package entities

import (
	"strings"

	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
)

// ConfigDocument is the persisted configuration of every guild, keyed by the guild ID.
type ConfigDocument map[string]*GuildConfig

// GuildConfig is the ticketing configuration for a guild.
type GuildConfig struct {
	// SupportChannelID is the channel where the support panel lives.
	SupportChannelID custom.Snowflake `json:"support_channel_id"`

	// Categories are the ticket categories, in the order they are displayed.
	Categories []*Category `json:"categories"`

	// OpenTickets is the registry of open tickets keyed by the channel ID.
	OpenTickets map[string]*TicketEntry `json:"open_tickets"`
}

// NewGuildConfig creates a guild configuration with the seed categories and an empty registry.
func NewGuildConfig() *GuildConfig {
	return &GuildConfig{
		Categories:  DefaultCategories(),
		OpenTickets: make(map[string]*TicketEntry),
	}
}

// GetOrInit returns the configuration for the guild, creating a default one if the guild has never been seen. The
// returned pointer aliases the document, so callers must save the document after mutating it.
func GetOrInit(doc ConfigDocument, guildID string) *GuildConfig {
	if g, ok := doc[guildID]; ok && g != nil {
		if g.OpenTickets == nil {
			g.OpenTickets = make(map[string]*TicketEntry)
		}
		return g
	}

	g := NewGuildConfig()
	doc[guildID] = g
	return g
}

// Normalize removes null guilds and fills in absent collections so the rest of the application never has to check
// for nil.
func (d ConfigDocument) Normalize() {
	for id, g := range d {
		if g == nil {
			delete(d, id)
			continue
		}
		if g.Categories == nil {
			g.Categories = make([]*Category, 0)
		}
		cats := g.Categories[:0]
		for _, c := range g.Categories {
			if c == nil {
				continue
			}
			if c.CloseRoleIDs == nil {
				c.CloseRoleIDs = make([]custom.Snowflake, 0)
			}
			if c.Emoji == "" {
				c.Emoji = EmojiUnset
			}
			cats = append(cats, c)
		}
		g.Categories = cats
		if g.OpenTickets == nil {
			g.OpenTickets = make(map[string]*TicketEntry)
		}
		for k, e := range g.OpenTickets {
			if e == nil {
				delete(g.OpenTickets, k)
			}
		}
	}
}

// CategoryIndex returns the position of the category with the given label, compared case-insensitively, or -1.
func (g *GuildConfig) CategoryIndex(label string) int {
	for i, c := range g.Categories {
		if strings.EqualFold(c.Label, label) {
			return i
		}
	}
	return -1
}

// Category returns the category with the given label, compared case-insensitively.
func (g *GuildConfig) Category(label string) (*Category, bool) {
	idx := g.CategoryIndex(label)
	if idx < 0 {
		return nil, false
	}
	return g.Categories[idx], true
}

// CategoryExact returns the category whose label matches exactly. Ticket entries reference categories by their exact
// label.
func (g *GuildConfig) CategoryExact(label string) (*Category, bool) {
	for _, c := range g.Categories {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// TicketsOwnedBy returns the registry keys of the entries opened by the user.
func (g *GuildConfig) TicketsOwnedBy(userID string) []string {
	keys := make([]string, 0)
	for k, e := range g.OpenTickets {
		if string(e.OwnerID) == userID {
			keys = append(keys, k)
		}
	}
	return keys
}
