package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/config"
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/fastsupport/pkg/dataaccess"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/request"
	"github.com/Jacobbrewer1/fastsupport/pkg/store"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Service returns the ticket service.
	Service() *ticketing.Service

	// History returns the ticket history archive. Nil when the history is not archived.
	History() dataaccess.HistoryDal

	// Context is cancelled when the application shuts down.
	Context() context.Context
}

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the configuration of the bot.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// store owns the guild configuration file.
	store *store.Store

	// svc is the ticket service.
	svc *ticketing.Service

	// mongo is the history database client. Nil when the history is not archived.
	mongo *mongo.Client

	// hist reads and writes the ticket history.
	hist dataaccess.HistoryDal

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	ctx    context.Context
	cancel context.CancelFunc

	// guilds are the guilds the bot is in.
	guildsMu sync.Mutex
	guilds   map[string]struct{}
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *config.Config,
	r *mux.Router,
	s *discordgo.Session,
	st *store.Store,
	svc *ticketing.Service,
	client *mongo.Client,
	hist dataaccess.HistoryDal,
) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Logger: l,
		cfg:    cfg,
		r:      r,
		s:      s,
		store:  st,
		svc:    svc,
		mongo:  client,
		hist:   hist,
		ctx:    ctx,
		cancel: cancel,
		guilds: make(map[string]struct{}),
	}
}

func (a *App) Run() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	if a.eventNotifier == nil {
		// Buffered so the session is not blocked by the listener.
		a.eventNotifier = make(chan any, 100)
	}
	a.s.SetEventNotifier(a.eventNotifier)

	a.RegisterDiscordHandlers()

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	a.Info("Received shutdown signal", slog.String("signal", sig.String()))
	if err := a.ShutdownHook(); err != nil {
		return fmt.Errorf("error shutting down application: %w", err)
	}
	return nil
}

// ShutdownHook cancels the pending tasks, writes the configuration and closes every connection. Commands stay
// registered so they keep working after a restart.
func (a *App) ShutdownHook() error {
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	a.svc.Shutdown(ctx)
	monitoring.TotalDiscordGuilds.Set(0)

	var errs []error
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error disconnecting from MongoDB: %w", err))
		}
	}
	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a, a.healthCheck())).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + a.cfg.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) RegisterDiscordHandlers() {
	a.s.AddHandler(a.readyHandler())

	// Bot joined guild.
	a.s.AddHandler(a.guildJoinedHandler())

	// Bot left guild.
	a.s.AddHandler(a.guildLeaveHandler())

	a.s.AddHandler(interactionHandler(a, slashControllers(), componentControllers(), componentPrefixes()))
	a.s.AddHandler(messageHandler(a, prefixControllers()))
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Service() *ticketing.Service {
	return a.svc
}

func (a *App) History() dataaccess.HistoryDal {
	if a.mongo == nil {
		return nil
	}
	return a.hist
}

func (a *App) Context() context.Context {
	return a.ctx
}
