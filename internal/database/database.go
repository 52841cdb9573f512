// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package database wraps the MongoDB connection and provides typed
// repositories over the IBAMA collections.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dferraz/fiscalis/internal/config"
	"github.com/dferraz/fiscalis/internal/logging"
	"github.com/dferraz/fiscalis/internal/metrics"
)

// Collection names match the upstream IBAMA database schema.
const (
	colOffenders   = "infrator"
	colInfractions = "auto_infracao"
	colBiomes      = "bioma"
	colSpecimens   = "especime"
	colFramings    = "enquadramento"
	colBuildings   = "edificio_IBAMA"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// DB wraps the MongoDB client and exposes the typed repositories.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.MongoConfig
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg *config.MongoConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetServerSelectionTimeout(cfg.Timeout)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	logging.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	return &DB{client: client, db: client.Database(cfg.Database), cfg: cfg}, nil
}

// Ping verifies the connection is still alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the API depends on. The 2dsphere index
// on building locations is required by the $nearSphere lookup.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(colBuildings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("location_2dsphere"),
	})
	if err != nil {
		return fmt.Errorf("creating 2dsphere index on %s: %w", colBuildings, err)
	}
	logging.Debug().Str("collection", colBuildings).Msg("Geo index ensured")
	return nil
}

// Offenders returns the offender repository.
func (d *DB) Offenders() *Offenders {
	return &Offenders{col: d.db.Collection(colOffenders)}
}

// Infractions returns the infraction-notice repository.
func (d *DB) Infractions() *Infractions {
	return &Infractions{col: d.db.Collection(colInfractions)}
}

// Biomes returns the biome-catalog repository.
func (d *DB) Biomes() *Biomes {
	return &Biomes{col: d.db.Collection(colBiomes)}
}

// Specimens returns the seized-specimen repository.
func (d *DB) Specimens() *Specimens {
	return &Specimens{col: d.db.Collection(colSpecimens)}
}

// Framings returns the legal-framing repository.
func (d *DB) Framings() *Framings {
	return &Framings{col: d.db.Collection(colFramings)}
}

// Buildings returns the IBAMA building repository.
func (d *DB) Buildings() *Buildings {
	return &Buildings{col: d.db.Collection(colBuildings)}
}

// track returns a completion callback that records operation latency and
// outcome. Callers invoke it once on every return path.
func track(operation, collection string) func(error) {
	start := time.Now()
	return func(err error) {
		metrics.RecordMongoOperation(operation, collection, time.Since(start), err)
	}
}

// pageOpts converts 1-based page/size into find options.
func pageOpts(page, size int) *options.FindOptions {
	return options.Find().
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
}

// aggregateDiskOpts allows server-side disk use for the heavier
// aggregations over the infraction collection.
func aggregateDiskOpts() *options.AggregateOptions {
	return options.Aggregate().SetAllowDiskUse(true)
}

// insertAll converts a typed slice for InsertMany.
func insertAll[T any](docs []T) []interface{} {
	out := make([]interface{}, len(docs))
	for i := range docs {
		out[i] = docs[i]
	}
	return out
}
