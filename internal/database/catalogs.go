// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dferraz/fiscalis/internal/models"
)

// Biomes is the repository over the biome catalog collection.
type Biomes struct {
	col *mongo.Collection
}

// Insert inserts the batch of biome rows.
func (r *Biomes) Insert(ctx context.Context, docs []models.Biome) (int, error) {
	done := track("insert_many", colBiomes)
	res, err := r.col.InsertMany(ctx, insertAll(docs))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Count counts all biome rows.
func (r *Biomes) Count(ctx context.Context) (int64, error) {
	done := track("count", colBiomes)
	total, err := r.col.CountDocuments(ctx, bson.M{})
	done(err)
	return total, err
}

// List returns one page of biome rows.
func (r *Biomes) List(ctx context.Context, page, size int) (int64, []models.Biome, error) {
	return listPage[models.Biome](ctx, r.col, colBiomes, page, size)
}

// GetByID fetches one biome row by object id.
func (r *Biomes) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Biome, error) {
	return getByID[models.Biome](ctx, r.col, colBiomes, id)
}

// Specimens is the repository over the seized-specimen collection.
type Specimens struct {
	col *mongo.Collection
}

// Insert inserts the batch of specimen rows.
func (r *Specimens) Insert(ctx context.Context, docs []models.Specimen) (int, error) {
	done := track("insert_many", colSpecimens)
	res, err := r.col.InsertMany(ctx, insertAll(docs))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Count counts all specimen rows.
func (r *Specimens) Count(ctx context.Context) (int64, error) {
	done := track("count", colSpecimens)
	total, err := r.col.CountDocuments(ctx, bson.M{})
	done(err)
	return total, err
}

// List returns one page of specimen rows.
func (r *Specimens) List(ctx context.Context, page, size int) (int64, []models.Specimen, error) {
	return listPage[models.Specimen](ctx, r.col, colSpecimens, page, size)
}

// GetByID fetches one specimen row by object id.
func (r *Specimens) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Specimen, error) {
	return getByID[models.Specimen](ctx, r.col, colSpecimens, id)
}

// Framings is the repository over the legal-framing collection.
type Framings struct {
	col *mongo.Collection
}

// Insert inserts the batch of framing rows.
func (r *Framings) Insert(ctx context.Context, docs []models.Framing) (int, error) {
	done := track("insert_many", colFramings)
	res, err := r.col.InsertMany(ctx, insertAll(docs))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Count counts all framing rows.
func (r *Framings) Count(ctx context.Context) (int64, error) {
	done := track("count", colFramings)
	total, err := r.col.CountDocuments(ctx, bson.M{})
	done(err)
	return total, err
}

// List returns one page of framing rows.
func (r *Framings) List(ctx context.Context, page, size int) (int64, []models.Framing, error) {
	return listPage[models.Framing](ctx, r.col, colFramings, page, size)
}

// GetByID fetches one framing row by object id.
func (r *Framings) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Framing, error) {
	return getByID[models.Framing](ctx, r.col, colFramings, id)
}

// ByNormAndAdministrative returns framings with the exact norm type and
// administrative flag.
func (r *Framings) ByNormAndAdministrative(ctx context.Context, normType, administrative string, page, size int) ([]models.Framing, error) {
	done := track("find", colFramings)
	query := bson.M{"tp_norma": normType, "administrativo": administrative}
	cursor, err := r.col.Find(ctx, query, pageOpts(page, size))
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)
	items := []models.Framing{}
	err = cursor.All(ctx, &items)
	done(err)
	return items, err
}

// ByNormNumber returns framings issued under the given norm number.
func (r *Framings) ByNormNumber(ctx context.Context, normNumber int64, page, size int) ([]models.Framing, error) {
	done := track("find", colFramings)
	cursor, err := r.col.Find(ctx, bson.M{"nu_norma": normNumber}, pageOpts(page, size))
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)
	items := []models.Framing{}
	err = cursor.All(ctx, &items)
	done(err)
	return items, err
}

// NormTypeStats counts framings per norm type, ordered by count descending.
func (r *Framings) NormTypeStats(ctx context.Context) ([]models.NormTypeCount, error) {
	done := track("aggregate", colFramings)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$tp_norma", "total": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"tipo_norma": "$_id", "total": 1, "_id": 0}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []models.NormTypeCount
	err = cursor.All(ctx, &buckets)
	done(err)
	return buckets, err
}

// listPage is the shared count+find pagination used by the catalog
// repositories.
func listPage[T any](ctx context.Context, col *mongo.Collection, name string, page, size int) (int64, []T, error) {
	done := track("find", name)

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		done(err)
		return 0, nil, err
	}
	items := []T{}
	cursor, err := col.Find(ctx, bson.M{}, pageOpts(page, size))
	if err != nil {
		done(err)
		return 0, nil, err
	}
	defer cursor.Close(ctx)
	err = cursor.All(ctx, &items)
	done(err)
	return total, items, err
}

// getByID is the shared single-document lookup.
func getByID[T any](ctx context.Context, col *mongo.Collection, name string, id primitive.ObjectID) (*T, error) {
	done := track("find_one", name)
	var doc T
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		done(nil)
		return nil, ErrNotFound
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
