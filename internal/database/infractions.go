// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package database

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dferraz/fiscalis/internal/geo"
	"github.com/dferraz/fiscalis/internal/models"
)

// Infractions is the repository over the infraction-notice collection.
type Infractions struct {
	col *mongo.Collection
}

// Insert inserts the batch of infraction notices.
func (r *Infractions) Insert(ctx context.Context, docs []models.Infraction) (int, error) {
	done := track("insert_many", colInfractions)
	res, err := r.col.InsertMany(ctx, insertAll(docs))
	done(err)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// Count counts all infraction notices.
func (r *Infractions) Count(ctx context.Context) (int64, error) {
	done := track("count", colInfractions)
	total, err := r.col.CountDocuments(ctx, bson.M{})
	done(err)
	return total, err
}

// List returns one page of infraction notices.
func (r *Infractions) List(ctx context.Context, page, size int) (int64, []models.Infraction, error) {
	done := track("find", colInfractions)

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		done(err)
		return 0, nil, err
	}
	items := []models.Infraction{}
	cursor, err := r.col.Find(ctx, bson.M{}, pageOpts(page, size))
	if err != nil {
		done(err)
		return 0, nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &items); err != nil {
		done(err)
		return 0, nil, err
	}
	done(nil)
	return total, items, nil
}

// GetByID fetches one infraction notice by object id.
func (r *Infractions) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Infraction, error) {
	done := track("find_one", colInfractions)
	var doc models.Infraction
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
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

// ByDate returns the infraction notices issued on the given calendar day.
func (r *Infractions) ByDate(ctx context.Context, day time.Time) ([]models.Infraction, error) {
	done := track("find", colInfractions)

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	cursor, err := r.col.Find(ctx, bson.M{
		"dat_hora_auto_infracao": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.Infraction{}
	err = cursor.All(ctx, &items)
	done(err)
	return items, err
}

// Nearest returns the infraction notice closest to the given point within
// radiusMeters. Coordinates are stored as plain decimal fields, so the
// query prefilters with a degree bounding box and refines with the
// haversine distance in memory.
func (r *Infractions) Nearest(ctx context.Context, longitude, latitude, radiusMeters float64) (*models.Infraction, error) {
	done := track("find", colInfractions)

	degrees := radiusMeters / geo.MetersPerDegree
	cursor, err := r.col.Find(ctx, bson.M{
		"num_longitude": bson.M{"$gte": longitude - degrees, "$lte": longitude + degrees},
		"num_latitude":  bson.M{"$gte": latitude - degrees, "$lte": latitude + degrees},
	})
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var candidates []models.Infraction
	if err := cursor.All(ctx, &candidates); err != nil {
		done(err)
		return nil, err
	}
	done(nil)

	type scored struct {
		doc      models.Infraction
		distance float64
	}
	var within []scored
	for _, c := range candidates {
		d := geo.Haversine(latitude, longitude, c.Latitude, c.Longitude)
		if d <= radiusMeters {
			within = append(within, scored{doc: c, distance: d})
		}
	}
	if len(within) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(within, func(i, j int) bool { return within[i].distance < within[j].distance })
	return &within[0].doc, nil
}

// framingLookup joins the framings of each infraction into an
// "enquadramentos" array and counts them.
func framingLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         colFramings,
			"localField":   "seq_auto_infracao",
			"foreignField": "seq_auto_infracao",
			"as":           "enquadramentos",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"total_enquadramentos": bson.M{"$size": "$enquadramentos"},
		}}},
	}
}

// infractionFramings is the decode shape of the framing lookup.
type infractionFramings struct {
	models.Infraction `bson:",inline"`
	Framings          []models.Framing `bson:"enquadramentos"`
	TotalFramings     int              `bson:"total_enquadramentos"`
}

// WithFramings returns one infraction notice joined with all of its legal
// framings via a server-side $lookup.
func (r *Infractions) WithFramings(ctx context.Context, sequence int64) (*models.InfractionWithFramings, error) {
	done := track("aggregate", colInfractions)

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seq_auto_infracao": sequence}}},
	}, framingLookup()...)
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []infractionFramings
	if err := cursor.All(ctx, &rows); err != nil {
		done(err)
		return nil, err
	}
	done(nil)
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return joinedFramings(rows[0]), nil
}

// WithFramingsMany returns the joined shape for each of the given
// sequences that exists. Missing sequences are silently skipped.
func (r *Infractions) WithFramingsMany(ctx context.Context, sequences []int64) ([]models.InfractionWithFramings, error) {
	done := track("aggregate", colInfractions)

	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seq_auto_infracao": bson.M{"$in": sequences}}}},
	}, framingLookup()...)
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []infractionFramings
	if err := cursor.All(ctx, &rows); err != nil {
		done(err)
		return nil, err
	}
	done(nil)

	out := make([]models.InfractionWithFramings, 0, len(rows))
	for _, row := range rows {
		out = append(out, *joinedFramings(row))
	}
	return out, nil
}

func joinedFramings(row infractionFramings) *models.InfractionWithFramings {
	framings := row.Framings
	if framings == nil {
		framings = []models.Framing{}
	}
	return &models.InfractionWithFramings{
		Sequence:      row.Sequence,
		Infraction:    row.Infraction,
		Framings:      framings,
		TotalFramings: row.TotalFramings,
	}
}

// SpecimensByBiome returns the infractions inside the date range whose
// biome matches the given name, each joined with its seized specimens.
func (r *Infractions) SpecimensByBiome(ctx context.Context, from, to time.Time, biome string, skip, limit int) ([]models.InfractionWithSpecimens, error) {
	done := track("aggregate", colInfractions)

	match := bson.M{
		"dat_hora_auto_infracao": bson.M{"$gte": from, "$lte": to},
	}
	if biome != "" {
		match["bioma"] = bson.M{"$regex": biome, "$options": "i"}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colSpecimens,
			"localField":   "seq_auto_infracao",
			"foreignField": "seq_auto_infracao",
			"as":           "especimes",
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		models.Infraction `bson:",inline"`
		Specimens         []models.Specimen `bson:"especimes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		done(err)
		return nil, err
	}
	done(nil)

	out := make([]models.InfractionWithSpecimens, 0, len(rows))
	for _, row := range rows {
		specimens := row.Specimens
		if specimens == nil {
			specimens = []models.Specimen{}
		}
		out = append(out, models.InfractionWithSpecimens{
			Infraction: row.Infraction,
			Specimens:  specimens,
		})
	}
	return out, nil
}

// DetailedQuery is the filter/sort/page input of the detailed listing.
type DetailedQuery struct {
	From         *time.Time
	To           *time.Time
	Municipality string

	// SortBy is "dat_hora_auto_infracao" or "val_auto_infracao".
	SortBy     string
	Descending bool

	Page int
	Size int
}

func (q DetailedQuery) match() bson.M {
	match := bson.M{}
	if q.From != nil || q.To != nil {
		dateRange := bson.M{}
		if q.From != nil {
			dateRange["$gte"] = *q.From
		}
		if q.To != nil {
			dateRange["$lte"] = *q.To
		}
		match["dat_hora_auto_infracao"] = dateRange
	}
	if q.Municipality != "" {
		match["municipio"] = q.Municipality
	}
	return match
}

// lookupLimit bounds per-infraction sub-lookups in the detailed listing.
const lookupLimit = 100

// Detailed runs the detailed listing aggregation: filtered and sorted
// infraction notices with limited framing and specimen joins.
func (r *Infractions) Detailed(ctx context.Context, q DetailedQuery) (int64, []models.DetailedInfraction, error) {
	done := track("aggregate", colInfractions)

	direction := 1
	if q.Descending {
		direction = -1
	}
	match := q.match()

	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.M{q.SortBy: direction}}},
		bson.D{{Key: "$skip", Value: (q.Page - 1) * q.Size}},
		bson.D{{Key: "$limit", Value: q.Size}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": colFramings,
			"let":  bson.M{"auto_id": "$seq_auto_infracao"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$seq_auto_infracao", "$$auto_id"}}}},
				{"$limit": lookupLimit},
				{"$project": bson.M{"_id": 0, "sq_enquadramento": 1, "tp_norma": 1, "nu_norma": 1}},
			},
			"as": "enquadramentos",
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": colSpecimens,
			"let":  bson.M{"auto_id": "$seq_auto_infracao"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$seq_auto_infracao", "$$auto_id"}}}},
				{"$limit": lookupLimit},
				{"$project": bson.M{"_id": 0, "seq_especime": 1, "quantidade": 1, "nome_popular": 1}},
			},
			"as": "especies",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":                    0,
			"seq_auto_infracao":      1,
			"dat_hora_auto_infracao": 1,
			"municipio":              1,
			"val_auto_infracao":      1,
			"enquadramentos":         1,
			"especies":               1,
		}}},
	)

	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		done(err)
		return 0, nil, err
	}

	cursor, err := r.col.Aggregate(ctx, pipeline, aggregateDiskOpts())
	if err != nil {
		done(err)
		return 0, nil, err
	}
	defer cursor.Close(ctx)

	items := []models.DetailedInfraction{}
	err = cursor.All(ctx, &items)
	done(err)
	return total, items, err
}

// BiomeStatsQuery is the input of the per-biome statistics aggregation.
type BiomeStatsQuery struct {
	Biome string
	From  *time.Time
	To    *time.Time

	// SortBy is "total_infracoes" or "media_valor".
	SortBy     string
	Descending bool

	Page int
	Size int
}

// BiomeStats aggregates infraction totals and mean fine value for the
// given biome, joined with the biome catalog's latest update timestamp.
func (r *Infractions) BiomeStats(ctx context.Context, q BiomeStatsQuery) ([]models.BiomeStats, error) {
	done := track("aggregate", colInfractions)

	match := bson.M{"bioma": q.Biome}
	if q.From != nil || q.To != nil {
		dateRange := bson.M{}
		if q.From != nil {
			dateRange["$gte"] = *q.From
		}
		if q.To != nil {
			dateRange["$lte"] = *q.To
		}
		match["dat_hora_auto_infracao"] = dateRange
	}

	direction := 1
	if q.Descending {
		direction = -1
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$bioma",
			"total_infracoes": bson.M{"$sum": 1},
			"media_valor":     bson.M{"$avg": "$val_auto_infracao"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": colBiomes,
			"let":  bson.M{"nome_bioma": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$bioma", "$$nome_bioma"}}}},
				{"$sort": bson.M{"ultima_atualizacao": -1}},
				{"$limit": 1},
				{"$project": bson.M{"_id": 0, "ultima_atualizacao": 1}},
			},
			"as": "bioma_info",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"bioma":           "$_id",
			"total_infracoes": 1,
			"media_valor":     1,
			"ultima_atualizacao": bson.M{
				"$arrayElemAt": []interface{}{"$bioma_info.ultima_atualizacao", 0},
			},
		}}},
		{{Key: "$sort", Value: bson.M{q.SortBy: direction}}},
		{{Key: "$skip", Value: (q.Page - 1) * q.Size}},
		{{Key: "$limit", Value: q.Size}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline, aggregateDiskOpts())
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.BiomeStats{}
	err = cursor.All(ctx, &items)
	done(err)
	return items, err
}

// HealthEffectCounts groups infraction notices by declared public-health
// effect, ordered by count descending. Used by the report renderer.
func (r *Infractions) HealthEffectCounts(ctx context.Context) ([]models.HealthEffectCount, error) {
	done := track("aggregate", colInfractions)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$efeito_saude_publica", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		done(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []models.HealthEffectCount
	err = cursor.All(ctx, &buckets)
	done(err)
	return buckets, err
}
