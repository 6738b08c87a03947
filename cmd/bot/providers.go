package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/cmd/bot/config"
	"github.com/Jacobbrewer1/fastsupport/pkg/dataaccess"
	"github.com/Jacobbrewer1/fastsupport/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/store"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
	"go.mongodb.org/mongo-driver/mongo"
)

func provideConfig(l *slog.Logger) (*config.Config, error) {
	return config.Parse(l)
}

func provideSession(cfg *config.Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)
	return dg, nil
}

func provideStore(l *slog.Logger, cfg *config.Config) *store.Store {
	return store.Open(l, cfg.ConfigFile, store.WithMaxBackups(cfg.MaxBackups))
}

// provideMongo connects to the history database. The client is nil when no URI is configured.
func provideMongo(l *slog.Logger, cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoUri == "" {
		l.Info("MongoDB not configured, ticket history will not be archived")
		return nil, nil
	}

	db := &connection.MongoDB{ConnectionString: cfg.MongoUri}
	client, err := db.Connect(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}
	l.Info("Connected to MongoDB")
	return client, nil
}

func provideHistoryDal(l *slog.Logger, client *mongo.Client) dataaccess.HistoryDal {
	return dataaccess.NewHistoryDal(l, client)
}

func provideService(
	l *slog.Logger,
	st *store.Store,
	p ticketing.Platform,
	client *mongo.Client,
	hist dataaccess.HistoryDal,
	cfg *config.Config,
) *ticketing.Service {
	opts := []ticketing.ServiceOption{
		ticketing.WithLegacyStaffRole(cfg.LegacyStaffRole),
	}
	if client != nil {
		opts = append(opts, ticketing.WithAuditSinks(hist))
	}

	l.Debug("Creating ticket service", slog.String(logging.KeyDal, "history"), slog.Bool("archive", client != nil))
	return ticketing.NewService(l, st, p, opts...)
}
