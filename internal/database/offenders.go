// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dferraz/fiscalis/internal/ingest"
	"github.com/dferraz/fiscalis/internal/models"
)

// Offenders is the repository over the offender collection. It implements
// ingest.OffenderStore for the merge pipeline.
type Offenders struct {
	col *mongo.Collection
}

// OffenderFilter holds the optional case-insensitive substring filters of
// the offender listing and count endpoints.
type OffenderFilter struct {
	Name         string
	State        string
	Municipality string
}

func (f OffenderFilter) query() bson.M {
	q := bson.M{}
	if f.Name != "" {
		q["nome_infrator"] = bson.M{"$regex": f.Name, "$options": "i"}
	}
	if f.State != "" {
		q["estado"] = bson.M{"$regex": f.State, "$options": "i"}
	}
	if f.Municipality != "" {
		q["municipio"] = bson.M{"$regex": f.Municipality, "$options": "i"}
	}
	return q
}

// SnapshotEntries reads the identity projection of every stored offender.
// The ingestion pipeline indexes the result into its run snapshot.
func (r *Offenders) SnapshotEntries(ctx context.Context) ([]ingest.SnapshotEntry, error) {
	done := track("find", colOffenders)

	opts := options.Find().SetProjection(bson.M{
		"nome_infrator":       1,
		"municipio":           1,
		"estado":              1,
		"historico_infracoes": 1,
	})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []ingest.SnapshotEntry
	for cursor.Next(ctx) {
		var doc models.Offender
		if err := cursor.Decode(&doc); err != nil {
			done(err)
			return nil, err
		}
		entries = append(entries, ingest.SnapshotEntry{
			ID:           doc.ID,
			Name:         doc.Name,
			Municipality: doc.Municipality,
			State:        doc.State,
			History:      doc.History,
		})
	}
	err = cursor.Err()
	done(err)
	return entries, err
}

// InsertOffenders inserts the batch in one InsertMany call.
func (r *Offenders) InsertOffenders(ctx context.Context, offenders []models.Offender) (int, error) {
	done := track("insert_many", colOffenders)
	res, err := r.col.InsertMany(ctx, insertAll(offenders))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// MergeOffender applies one merge patch: the new history entries are added
// with $addToSet, and the stored act interval is widened only where the
// patch's timestamps fall strictly outside it. The record is re-read at
// apply time so a patch never narrows an interval another run has already
// widened.
func (r *Offenders) MergeOffender(ctx context.Context, patch ingest.Patch) error {
	done := track("update_one", colOffenders)

	var current models.Offender
	err := r.col.FindOne(ctx, bson.M{"_id": patch.ID}).Decode(&current)
	if err == mongo.ErrNoDocuments {
		done(ErrNotFound)
		return fmt.Errorf("offender %s: %w", patch.ID.Hex(), ErrNotFound)
	}
	if err != nil {
		done(err)
		return err
	}

	update := bson.M{
		"$addToSet": bson.M{
			"historico_infracoes": bson.M{"$each": patch.NewHistory},
		},
	}
	set := bson.M{}
	if patch.StartAt.Before(current.StartAt) {
		set["dt_inicio_ato_inequivoco"] = patch.StartAt
	}
	if patch.EndAt.After(current.EndAt) {
		set["dt_fim_ato_inequivoco"] = patch.EndAt
	}
	if len(set) > 0 {
		update["$set"] = set
	}

	_, err = r.col.UpdateOne(ctx, bson.M{"_id": patch.ID}, update)
	done(err)
	return err
}

// List returns one page of offenders matching the filter, plus the total
// match count.
func (r *Offenders) List(ctx context.Context, filter OffenderFilter, page, size int) (int64, []models.Offender, error) {
	done := track("find", colOffenders)

	query := filter.query()
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		done(err)
		return 0, nil, err
	}

	items := []models.Offender{}
	if total > 0 {
		cursor, err := r.col.Find(ctx, query, pageOpts(page, size))
		if err != nil {
			done(err)
			return 0, nil, err
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &items); err != nil {
			done(err)
			return 0, nil, err
		}
	}
	done(nil)
	return total, items, nil
}

// Count counts offenders matching the filter.
func (r *Offenders) Count(ctx context.Context, filter OffenderFilter) (int64, error) {
	done := track("count", colOffenders)
	total, err := r.col.CountDocuments(ctx, filter.query())
	done(err)
	return total, err
}

// Stats aggregates offender counts by state and by infraction area.
// Empty area buckets are dropped.
func (r *Offenders) Stats(ctx context.Context) (*models.OffenderStats, error) {
	done := track("aggregate", colOffenders)

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		done(err)
		return nil, err
	}
	stats := &models.OffenderStats{Total: total, ByState: []models.StateCount{}, ByArea: []models.AreaCount{}}
	if total == 0 {
		done(nil)
		return stats, nil
	}

	byState, err := r.groupCount(ctx, "$estado")
	if err != nil {
		done(err)
		return nil, err
	}
	for _, b := range byState {
		stats.ByState = append(stats.ByState, models.StateCount{State: b.key, Count: b.count})
	}

	byArea, err := r.groupCount(ctx, "$infracao_area")
	if err != nil {
		done(err)
		return nil, err
	}
	for _, b := range byArea {
		if b.key == "" {
			continue
		}
		stats.ByArea = append(stats.ByArea, models.AreaCount{Area: b.key, Count: b.count})
	}

	done(nil)
	return stats, nil
}

type groupBucket struct {
	key   string
	count int64
}

// groupCount runs a count-descending $group over the given field path.
func (r *Offenders) groupCount(ctx context.Context, field string) ([]groupBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []groupBucket
	for cursor.Next(ctx) {
		var doc struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		buckets = append(buckets, groupBucket{key: doc.Key, count: doc.Count})
	}
	return buckets, cursor.Err()
}

// CountByState returns the per-state offender counts for the report
// renderer, ordered by count descending.
func (r *Offenders) CountByState(ctx context.Context) ([]models.StateCount, error) {
	done := track("aggregate", colOffenders)
	buckets, err := r.groupCount(ctx, "$estado")
	done(err)
	if err != nil {
		return nil, err
	}
	out := make([]models.StateCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.StateCount{State: b.key, Count: b.count})
	}
	return out, nil
}

var _ ingest.OffenderStore = (*Offenders)(nil)
