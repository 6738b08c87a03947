package ticketing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/store"
	"golang.org/x/time/rate"
)

const (
	// DefaultLegacyStaffRole is the name of the role that may manage every ticket.
	DefaultLegacyStaffRole = "Staff"

	// DefaultNotificationDelay is how long participant notifications stay in the channel.
	DefaultNotificationDelay = 3 * time.Second

	// ticketContainerName is the channel category that ticket channels are created in.
	ticketContainerName = "Tickets"

	// logChannelName is the channel the audit log is posted to.
	logChannelName = "\U0001F4C2・ticket-logs"

	// defaultSupportChannelName is used for the support panel when no channel is configured.
	defaultSupportChannelName = "support"

	// supportHistoryDepth is how many recent messages are searched for an existing support panel.
	supportHistoryDepth = 150
)

// binding routes interactions on a ticket panel back to its ticket.
type binding struct {
	guildID   string
	channelID string
}

// Service runs the ticket workflow of every guild.
type Service struct {
	// l is the logger.
	l *slog.Logger

	// store owns the configuration document.
	store *store.Store

	// platform is the chat platform.
	platform Platform

	// sinks receive the audit records.
	sinks []AuditSink

	// scheduler runs the delayed clean up of notifications.
	scheduler *Scheduler

	// limiter paces the platform calls made while re-attaching panels.
	limiter *rate.Limiter

	// legacyStaffRole is the name of the role that may manage every ticket.
	legacyStaffRole string

	// notificationDelay is how long participant notifications stay in the channel.
	notificationDelay time.Duration

	// now returns the current time.
	now func() time.Time

	bindMu   sync.RWMutex
	bindings map[string]binding

	// pending holds the owners whose ticket is being created, keyed by guild and owner.
	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// ServiceOption configures a Service.
type ServiceOption func(s *Service)

// WithAuditSinks adds sinks that receive every audit record.
func WithAuditSinks(sinks ...AuditSink) ServiceOption {
	return func(s *Service) {
		for _, sink := range sinks {
			if sink != nil {
				s.sinks = append(s.sinks, sink)
			}
		}
	}
}

// WithLegacyStaffRole sets the name of the role that may manage every ticket. An empty name disables the role.
func WithLegacyStaffRole(name string) ServiceOption {
	return func(s *Service) {
		s.legacyStaffRole = name
	}
}

// WithRateLimiter sets the limiter used while re-attaching panels.
func WithRateLimiter(l *rate.Limiter) ServiceOption {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithNotificationDelay sets how long participant notifications stay in the channel.
func WithNotificationDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.notificationDelay = d
	}
}

// WithServiceClock sets the function used to timestamp audit records.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the ticket service. The audit log channel is always one of the sinks.
func NewService(l *slog.Logger, st *store.Store, p Platform, opts ...ServiceOption) *Service {
	s := &Service{
		l:                 l.With(slog.String("component", "ticketing")),
		store:             st,
		platform:          p,
		scheduler:         NewScheduler(),
		limiter:           rate.NewLimiter(rate.Limit(5), 1),
		legacyStaffRole:   DefaultLegacyStaffRole,
		notificationDelay: DefaultNotificationDelay,
		now:               time.Now,
		bindings:          make(map[string]binding),
		pending:           make(map[string]struct{}),
	}
	s.sinks = []AuditSink{NewLogChannelSink(l, p)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scheduler returns the scheduler of delayed tasks.
func (s *Service) Scheduler() *Scheduler {
	return s.scheduler
}

// TicketForMessage returns the ticket whose control panel is the message.
func (s *Service) TicketForMessage(messageID string) (guildID, channelID string, ok bool) {
	s.bindMu.RLock()
	defer s.bindMu.RUnlock()
	b, ok := s.bindings[messageID]
	return b.guildID, b.channelID, ok
}

func (s *Service) bind(messageID, guildID, channelID string) {
	if messageID == "" {
		return
	}
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	s.bindings[messageID] = binding{guildID: guildID, channelID: channelID}
}

func (s *Service) unbind(messageID string) {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	delete(s.bindings, messageID)
}

// Ticket returns a copy of the registry entry of the channel.
func (s *Service) Ticket(guildID, channelID string) (*entities.TicketEntry, bool) {
	var entry *entities.TicketEntry
	s.store.Do(func(doc entities.ConfigDocument) {
		if e, ok := entities.GetOrInit(doc, guildID).OpenTickets[channelID]; ok {
			entry = e.Clone()
		}
	})
	return entry, entry != nil
}

// Shutdown cancels the pending delayed tasks and writes the configuration one last time.
func (s *Service) Shutdown(ctx context.Context) {
	if n := s.scheduler.Stop(); n > 0 {
		s.l.Info("Cancelled pending tasks", slog.Int("count", n))
	}
	s.store.Save(ctx)
}

func (s *Service) reserve(guildID, ownerID string) bool {
	key := guildID + "/" + ownerID
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, ok := s.pending[key]; ok {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *Service) release(guildID, ownerID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, guildID+"/"+ownerID)
}

func (s *Service) guildLogger(guildID string) *slog.Logger {
	return s.l.With(slog.String(logging.KeyGuild, guildID))
}
