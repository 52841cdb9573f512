// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dferraz/fiscalis/internal/logging"
	"github.com/dferraz/fiscalis/internal/metrics"
	"github.com/dferraz/fiscalis/internal/models"
)

// OffenderStore is the persistence surface the pipeline writes through.
// Implemented by the offender collection wrapper in internal/database.
type OffenderStore interface {
	// SnapshotEntries reads the identity, history, and id of every
	// stored offender.
	SnapshotEntries(ctx context.Context) ([]SnapshotEntry, error)

	// InsertOffenders inserts the batch and returns the inserted count.
	InsertOffenders(ctx context.Context, offenders []models.Offender) (int, error)

	// MergeOffender appends the patch's new history entries to the
	// record and widens its act interval where the patch's timestamps
	// fall outside the currently stored ones.
	MergeOffender(ctx context.Context, patch Patch) error
}

// Pipeline runs offender ingestions end to end. Runs are not serialized:
// two concurrent uploads each work from their own snapshot, and a record
// created after a snapshot was taken can be duplicated by the other run.
// Operationally, ingestions are periodic batch loads and are expected to
// be triggered one at a time.
type Pipeline struct {
	store OffenderStore

	// maxErrorMessages caps how many error strings a Summary carries.
	maxErrorMessages int
}

// NewPipeline builds a pipeline over the given store. maxErrorMessages
// bounds the Errors slice of the run summary; counts are never capped.
func NewPipeline(store OffenderStore, maxErrorMessages int) *Pipeline {
	return &Pipeline{store: store, maxErrorMessages: maxErrorMessages}
}

// Run executes one ingestion: parse, normalize, group, reconcile against a
// fresh snapshot, then persist. A FileError return means the upload was
// rejected before any write; any other error means the snapshot read
// failed. Per-record persistence failures do not abort the run and are
// reported in the summary instead.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, filename string) (*Summary, error) {
	started := time.Now()
	log := logging.Ctx(ctx)

	table, err := p.accept(r, filename)
	if err != nil {
		metrics.RecordIngestRun("infrator", "rejected", time.Since(started))
		return nil, err
	}

	summary := &Summary{Errors: []string{}}
	summary.TotalRows = table.Len()

	grouper := NewGrouper()
	for i := 0; i < table.Len(); i++ {
		row, err := NormalizeRow(table, i)
		if err != nil {
			summary.InvalidDateRows++
			continue
		}
		if err := grouper.Add(row); err != nil {
			summary.MissingIdentityRows++
			p.recordError(summary, err.Error())
			continue
		}
		summary.ValidRows++
	}
	summary.Groups = grouper.Len()

	metrics.RecordIngestRows("infrator", "valid", summary.ValidRows)
	metrics.RecordIngestRows("infrator", "invalid_date", summary.InvalidDateRows)
	metrics.RecordIngestRows("infrator", "missing_identity", summary.MissingIdentityRows)

	entries, err := p.store.SnapshotEntries(ctx)
	if err != nil {
		metrics.RecordIngestRun("infrator", "error", time.Since(started))
		return nil, fmt.Errorf("reading offender snapshot: %w", err)
	}
	snapshot := NewSnapshot(entries)
	plan := Reconcile(grouper.Groups(), snapshot)

	log.Info().
		Str("file", filename).
		Int("rows", summary.TotalRows).
		Int("groups", summary.Groups).
		Int("existing", snapshot.Len()).
		Int("to_insert", len(plan.Inserts)).
		Int("to_update", len(plan.Updates)).
		Int("noops", plan.NoOps).
		Msg("offender ingestion reconciled")

	p.persist(ctx, plan, summary)

	summary.Message = "offender ingestion completed"
	metrics.RecordIngestRun("infrator", "ok", time.Since(started))
	return summary, nil
}

// accept runs the whole-file checks that reject an upload before any
// write: filename extension, CSV parse, required columns.
func (p *Pipeline) accept(r io.Reader, filename string) (*Table, error) {
	if err := RequireCSV(filename); err != nil {
		return nil, err
	}
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	if err := RequireColumns(table, RequiredColumns); err != nil {
		return nil, err
	}
	return table, nil
}

// persist applies the plan: one batch insert for the new offenders, then
// one merge per patch. Each failure is recorded and the run continues.
func (p *Pipeline) persist(ctx context.Context, plan Plan, summary *Summary) {
	log := logging.Ctx(ctx)

	if len(plan.Inserts) > 0 {
		n, err := p.store.InsertOffenders(ctx, plan.Inserts)
		if err != nil {
			log.Error().Err(err).Int("count", len(plan.Inserts)).Msg("offender batch insert failed")
			p.recordError(summary, fmt.Sprintf("inserting %d offenders: %v", len(plan.Inserts), err))
		} else {
			summary.Inserted = n
		}
	}

	for _, patch := range plan.Updates {
		if err := p.store.MergeOffender(ctx, patch); err != nil {
			log.Error().Err(err).Stringer("offender", patch.Key).Msg("offender merge failed")
			p.recordError(summary, fmt.Sprintf("updating offender %s: %v", patch.Key, err))
			continue
		}
		summary.Updated++
	}
}

// recordError bumps the error count and keeps the message if the cap has
// not been reached.
func (p *Pipeline) recordError(summary *Summary, msg string) {
	summary.ErrorCount++
	if len(summary.Errors) < p.maxErrorMessages {
		summary.Errors = append(summary.Errors, msg)
	}
}
