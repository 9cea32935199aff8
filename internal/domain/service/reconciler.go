package service

import (
	"context"
	"math"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

// costTolerance is the absolute tolerance for comparing stored costs against
// incoming ones.
const costTolerance = 0.0001

// Reconciler implements the idempotent upsert protocol against a record
// store that has no native upsert: query candidates by date, scan them in
// store order, then create, fully update, backfill the time, or skip.
//
// The business key deliberately includes cost: two entries identical in
// (date, model, alias) whose cost differs are treated as distinct records.
type Reconciler struct {
	store   repository.RecordStore
	console types.ConsoleInterface
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store repository.RecordStore, console types.ConsoleInterface) *Reconciler {
	return &Reconciler{store: store, console: console}
}

// findExisting queries the store by date and scans the candidates for the
// first page matching the record's business key. needsTime reports that the
// matched page has no time-of-day while the record carries one.
func (r *Reconciler) findExisting(ctx context.Context, databaseID string, rec entity.UsageRecord) (pageID string, needsTime bool, err error) {
	pages, err := r.store.QueryByDate(ctx, databaseID, rec.Date)
	if err != nil {
		return "", false, err
	}

	for _, page := range pages {
		if page.Model != rec.Model {
			continue
		}
		if rec.AuthMethod != "" && page.AuthMethod != rec.AuthMethod {
			continue
		}
		if page.Cost == nil || math.Abs(*page.Cost-rec.Cost) > costTolerance {
			continue
		}

		if rec.Time == "" {
			// No time component to distinguish on: the page is a duplicate.
			return page.ID, false, nil
		}
		switch page.Time {
		case rec.Time:
			return page.ID, false, nil
		case "":
			return page.ID, true, nil
		default:
			// Same key but a different time-of-day: a distinct record.
			continue
		}
	}
	return "", false, nil
}

// Reconcile decides and applies the outcome for one record. Store failures
// are absorbed into a Skipped outcome so a batch never aborts on a single
// record.
func (r *Reconciler) Reconcile(ctx context.Context, databaseID string, rec entity.UsageRecord, updateExisting bool) entity.UpsertOutcome {
	if rec.Date == "" || rec.Model == "" {
		r.console.LogWarning("Record without date or model skipped (date=%q, model=%q)", rec.Date, rec.Model)
		return entity.OutcomeSkipped
	}

	pageID, needsTime, err := r.findExisting(ctx, databaseID, rec)
	if err != nil {
		r.console.LogWarning("Duplicate lookup failed for %s / %s: %v", rec.Date, rec.Model, err)
		return entity.OutcomeSkipped
	}

	if pageID == "" {
		if _, err := r.store.CreatePage(ctx, databaseID, rec); err != nil {
			r.console.LogWarning("Create failed for %s / %s: %v", rec.Date, rec.Model, err)
			return entity.OutcomeSkipped
		}
		return entity.OutcomeCreated
	}

	// Time backfill never destroys information, so it is applied regardless
	// of the update mode.
	if needsTime {
		if err := r.store.UpdatePage(ctx, pageID, rec, true); err != nil {
			r.console.LogWarning("Time backfill failed for %s / %s: %v", rec.Date, rec.Model, err)
			return entity.OutcomeSkipped
		}
		r.console.LogInfo("Time added: %s (%s) - %s", rec.Date, rec.Time, rec.Model)
		return entity.OutcomeUpdated
	}

	if updateExisting {
		if err := r.store.UpdatePage(ctx, pageID, rec, false); err != nil {
			r.console.LogWarning("Update failed for %s / %s: %v", rec.Date, rec.Model, err)
			return entity.OutcomeSkipped
		}
		return entity.OutcomeUpdated
	}

	r.console.LogInfo("Duplicate skipped: %s - %s", rec.Date, rec.Model)
	return entity.OutcomeSkipped
}

// SaveRecords runs the reconcile loop over a batch. The loop is strictly
// sequential and re-queries per record, so pages created earlier in the run
// are seen by later duplicate checks.
func (r *Reconciler) SaveRecords(ctx context.Context, databaseID string, records []entity.UsageRecord, updateExisting bool) entity.UpsertStats {
	var stats entity.UpsertStats
	for _, rec := range records {
		stats.Add(r.Reconcile(ctx, databaseID, rec, updateExisting))
	}
	return stats
}
