package ticketing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	testGuild = "100"
	testBot   = "1"
)

// fakePlatform is an in-memory guild.
type fakePlatform struct {
	mu sync.Mutex

	nextID   int
	channels map[string]*discordgo.Channel
	messages map[string][]*discordgo.Message
	roles    map[string][]*discordgo.Role
	perms    map[string]map[string]int64

	deletedChannels []string
	deletedMessages []string
	edits           []*discordgo.MessageEdit
	roleLookups     int

	failCreate   error
	failSend     error
	failChannels map[string]error
	panicGuild   string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		nextID:       1000,
		channels:     make(map[string]*discordgo.Channel),
		messages:     make(map[string][]*discordgo.Message),
		roles:        make(map[string][]*discordgo.Role),
		perms:        make(map[string]map[string]int64),
		failChannels: make(map[string]error),
	}
}

func (f *fakePlatform) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakePlatform) addChannel(guildID, name string, kind discordgo.ChannelType) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &discordgo.Channel{ID: f.id(), GuildID: guildID, Name: name, Type: kind}
	f.channels[ch.ID] = ch
	return ch
}

func (f *fakePlatform) addRole(guildID, name string) *discordgo.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &discordgo.Role{ID: f.id(), Name: name}
	f.roles[guildID] = append(f.roles[guildID], r)
	return r
}

func (f *fakePlatform) removeChannel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, id)
}

func (f *fakePlatform) channel(id string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[id]
}

func (f *fakePlatform) channelMessages(channelID string) []*discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Message(nil), f.messages[channelID]...)
}

func (f *fakePlatform) channelByName(guildID, name string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.GuildID == guildID && ch.Name == name {
			return ch
		}
	}
	return nil
}

func (f *fakePlatform) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakePlatform) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guildID == f.panicGuild {
		panic("guild exploded")
	}
	if err := f.failChannels[guildID]; err != nil {
		return nil, err
	}
	out := make([]*discordgo.Channel, 0)
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlatform) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	ch := &discordgo.Channel{
		ID:                   f.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) EditChannel(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	if data.Name != "" {
		ch.Name = data.Name
	}
	if data.Topic != "" {
		ch.Topic = data.Topic
	}
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) DeleteChannel(channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	delete(f.channels, channelID)
	f.deletedChannels = append(f.deletedChannels, channelID)
	return nil
}

func (f *fakePlatform) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return nil, f.failSend
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	msg := &discordgo.Message{
		ID:         f.id(),
		ChannelID:  channelID,
		Content:    data.Content,
		Embeds:     data.Embeds,
		Components: data.Components,
		Author:     &discordgo.User{ID: testBot},
	}
	f.messages[channelID] = append(f.messages[channelID], msg)
	return msg, nil
}

func (f *fakePlatform) EditMessage(data *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[data.Channel] {
		if m.ID != data.ID {
			continue
		}
		if data.Embeds != nil {
			m.Embeds = data.Embeds
		}
		if data.Components != nil {
			m.Components = data.Components
		}
		f.edits = append(f.edits, data)
		return m, nil
	}
	return nil, fmt.Errorf("message %s: %w", data.ID, ErrNotFound)
}

func (f *fakePlatform) Message(channelID, messageID string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
}

func (f *fakePlatform) RecentMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	out := make([]*discordgo.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.messages[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			f.deletedMessages = append(f.deletedMessages, messageID)
			return nil
		}
	}
	return fmt.Errorf("message %s: %w", messageID, ErrNotFound)
}

func (f *fakePlatform) Member(guildID, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID}}, nil
}

func (f *fakePlatform) Roles(guildID string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleLookups++
	return append([]*discordgo.Role(nil), f.roles[guildID]...), nil
}

func (f *fakePlatform) SetPermission(channelID, targetID string, _ discordgo.PermissionOverwriteType, allow, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.perms[channelID] == nil {
		f.perms[channelID] = make(map[string]int64)
	}
	f.perms[channelID][targetID] = allow
	return nil
}

func (f *fakePlatform) DeletePermission(channelID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.perms[channelID], targetID)
	return nil
}

func (f *fakePlatform) BotUserID() string {
	return testBot
}

// recordingSink keeps every audit record.
type recordingSink struct {
	mu     sync.Mutex
	events []*entities.TicketEvent
}

func (r *recordingSink) Record(_ context.Context, event *entities.TicketEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) kinds() []entities.TicketEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]entities.TicketEventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type testEnv struct {
	svc      *Service
	platform *fakePlatform
	store    *store.Store
	sink     *recordingSink
	path     string
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "guild_config.json")
	st := store.Open(newTestLogger(), path)
	fp := newFakePlatform()
	sink := new(recordingSink)

	svc := NewService(newTestLogger(), st, fp,
		WithAuditSinks(sink),
		WithRateLimiter(rate.NewLimiter(rate.Inf, 1)),
		WithNotificationDelay(10*time.Millisecond),
	)
	t.Cleanup(func() { svc.Scheduler().Stop() })

	return &testEnv{
		svc:      svc,
		platform: fp,
		store:    st,
		sink:     sink,
		path:     path,
	}
}

// seed adds a registry entry directly to the document.
func (e *testEnv) seed(guildID, key string, entry *entities.TicketEntry) {
	e.store.Do(func(doc entities.ConfigDocument) {
		entities.GetOrInit(doc, guildID).OpenTickets[key] = entry
	})
}

func (e *testEnv) entries(guildID string) map[string]*entities.TicketEntry {
	out := make(map[string]*entities.TicketEntry)
	e.store.Do(func(doc entities.ConfigDocument) {
		for k, v := range entities.GetOrInit(doc, guildID).OpenTickets {
			out[k] = v.Clone()
		}
	})
	return out
}

// persisted reads the registry of the guild back from disk.
func (e *testEnv) persisted(t *testing.T, guildID string) map[string]*entities.TicketEntry {
	t.Helper()
	doc := store.Open(newTestLogger(), e.path).Load()
	g, ok := doc[guildID]
	require.True(t, ok, "guild is persisted")
	return g.OpenTickets
}

func user(id, name string) Actor {
	return Actor{ID: id, Username: name}
}
