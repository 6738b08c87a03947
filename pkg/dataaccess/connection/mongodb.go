package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbMonitoring "github.com/Jacobbrewer1/fastsupport/pkg/dataaccess/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 5 * time.Second

// ErrNoMongoConfig is returned by Connect when neither a connection string nor a host is set.
var ErrNoMongoConfig = errors.New("mongo connection not configured")

// MongoDB describes how to reach the history database. Either ConnectionString or Host must be set.
type MongoDB struct {
	ConnectionString string
	Username         string
	Password         string
	Host             string
	Port             string
	Args             string
}

// Configured reports whether enough is set to connect.
func (m *MongoDB) Configured() bool {
	return m.ConnectionString != "" || m.Host != ""
}

// GenerateConnectionString builds the connection string from the host and credentials.
func (m *MongoDB) GenerateConnectionString() {
	cs := "mongodb+srv://"
	if m.Port != "" {
		// SRV records carry their own ports.
		cs = "mongodb://"
	}

	if m.Username != "" && m.Password != "" {
		cs += m.Username + ":" + m.Password + "@"
	} else if m.Username != "" {
		cs += m.Username + "@"
	}

	cs += m.Host

	if m.Port != "" {
		cs += ":" + m.Port
	}

	if m.Args != "" {
		cs += "/?" + m.Args
	}

	m.ConnectionString = cs
}

// Ping checks that the client can reach the primary.
func Ping(ctx context.Context, client *mongo.Client) error {
	t := prometheus.NewTimer(dbMonitoring.MongoLatency.WithLabelValues("health_check", "ping", "-", "-"))
	defer t.ObserveDuration()
	dbMonitoring.MongoTotalRequests.WithLabelValues("health_check", "ping", "-", "-").Inc()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		dbMonitoring.MongoErrors.WithLabelValues("health_check", "ping").Inc()
		return fmt.Errorf("error pinging mongo: %w", err)
	}
	return nil
}

// Connect opens a client and pings it. The client is disconnected again when the ping fails.
func (m *MongoDB) Connect(ctx context.Context) (*mongo.Client, error) {
	if !m.Configured() {
		return nil, ErrNoMongoConfig
	}
	if m.ConnectionString == "" {
		m.GenerateConnectionString()
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(m.ConnectionString).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
