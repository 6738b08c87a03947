package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/fastsupport/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const historyDalName = "history_dal"

// ErrNoClient is returned when the history is used without a Mongo client.
var ErrNoClient = errors.New("mongo client not configured")

// HistoryDal archives ticket transitions.
type HistoryDal interface {
	// Record stores a ticket event.
	Record(ctx context.Context, event *entities.TicketEvent) error

	// GuildHistory gets the most recent events of a guild, newest first.
	GuildHistory(ctx context.Context, guildID string, limit int64) ([]*entities.TicketEvent, error)

	// ChannelHistory gets every event of a ticket channel, oldest first.
	ChannelHistory(ctx context.Context, guildID, channelID string) ([]*entities.TicketEvent, error)
}

type historyDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewHistoryDal creates a new history data access layer.
func NewHistoryDal(l *slog.Logger, client *mongo.Client) HistoryDal {
	l = l.With(slog.String(logging.KeyDal, historyDalName))

	if client == nil {
		l.Warn("Mongo client is nil, ticket history will not be archived")
	}

	return &historyDal{
		l:      l,
		client: client,
	}
}

func (d *historyDal) collection() (*mongo.Collection, error) {
	if d.client == nil {
		return nil, ErrNoClient
	}
	return d.client.Database(mongoDatabase).Collection(historyCollection), nil
}

func (d *historyDal) Record(ctx context.Context, event *entities.TicketEvent) error {
	collection, err := d.collection()
	if err != nil {
		return err
	}

	monitoring.MongoTotalRequests.WithLabelValues(historyDalName, "record", mongoDatabase, historyCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(historyDalName, "record", mongoDatabase, historyCollection))
	defer t.ObserveDuration()

	if _, err := collection.InsertOne(ctx, event); err != nil {
		monitoring.MongoErrors.WithLabelValues(historyDalName, "record").Inc()
		return fmt.Errorf("error inserting ticket event: %w", err)
	}

	d.l.Debug("Ticket event archived",
		slog.String(logging.KeyGuild, event.GuildID),
		slog.String(logging.KeyChannel, event.ChannelID),
		slog.String("kind", string(event.Kind)),
	)
	return nil
}

func (d *historyDal) GuildHistory(ctx context.Context, guildID string, limit int64) ([]*entities.TicketEvent, error) {
	collection, err := d.collection()
	if err != nil {
		return nil, err
	}

	monitoring.MongoTotalRequests.WithLabelValues(historyDalName, "guild_history", mongoDatabase, historyCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(historyDalName, "guild_history", mongoDatabase, historyCollection))
	defer t.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	return d.find(ctx, collection, bson.M{"guild_id": guildID}, opts, "guild_history")
}

func (d *historyDal) ChannelHistory(ctx context.Context, guildID, channelID string) ([]*entities.TicketEvent, error) {
	collection, err := d.collection()
	if err != nil {
		return nil, err
	}

	monitoring.MongoTotalRequests.WithLabelValues(historyDalName, "channel_history", mongoDatabase, historyCollection).Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(historyDalName, "channel_history", mongoDatabase, historyCollection))
	defer t.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	filter := bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	}

	return d.find(ctx, collection, filter, opts, "channel_history")
}

func (d *historyDal) find(ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions, query string) ([]*entities.TicketEvent, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		monitoring.MongoErrors.WithLabelValues(historyDalName, query).Inc()
		return nil, fmt.Errorf("error finding ticket events: %w", err)
	}

	events := make([]*entities.TicketEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		monitoring.MongoErrors.WithLabelValues(historyDalName, query).Inc()
		return nil, fmt.Errorf("error decoding ticket events: %w", err)
	}
	return events, nil
}
