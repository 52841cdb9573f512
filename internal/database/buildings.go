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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dferraz/fiscalis/internal/models"
)

// Buildings is the repository over the IBAMA building collection.
type Buildings struct {
	col *mongo.Collection
}

// Insert inserts the batch of building documents.
func (r *Buildings) Insert(ctx context.Context, docs []models.Building) (int, error) {
	done := track("insert_many", colBuildings)
	res, err := r.col.InsertMany(ctx, insertAll(docs))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Count counts all building documents.
func (r *Buildings) Count(ctx context.Context) (int64, error) {
	done := track("count", colBuildings)
	total, err := r.col.CountDocuments(ctx, bson.M{})
	done(err)
	return total, err
}

// List returns one page of building documents.
func (r *Buildings) List(ctx context.Context, page, size int) (int64, []models.Building, error) {
	return listPage[models.Building](ctx, r.col, colBuildings, page, size)
}

// GetByID fetches one building by object id.
func (r *Buildings) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Building, error) {
	return getByID[models.Building](ctx, r.col, colBuildings, id)
}

// Nearest returns the building closest to the given point within
// maxDistanceMeters, using the 2dsphere index via $nearSphere.
func (r *Buildings) Nearest(ctx context.Context, longitude, latitude float64, maxDistanceMeters int) (*models.Building, error) {
	done := track("find", colBuildings)

	query := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    models.NewGeoPoint(longitude, latitude),
				"$maxDistance": maxDistanceMeters,
			},
		},
	}
	cursor, err := r.col.Find(ctx, query, options.Find().SetLimit(1))
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Building
	if err := cursor.All(ctx, &docs); err != nil {
		done(err)
		return nil, err
	}
	done(nil)
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

// MunicipalityStats counts buildings per municipality, ordered by count
// descending.
func (r *Buildings) MunicipalityStats(ctx context.Context) ([]models.MunicipalityCount, error) {
	done := track("aggregate", colBuildings)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$municipio", "total_edificios": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"municipio": "$_id", "total_edificios": 1, "_id": 0}}},
		{{Key: "$sort", Value: bson.M{"total_edificios": -1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []models.MunicipalityCount
	err = cursor.All(ctx, &buckets)
	done(err)
	return buckets, err
}
