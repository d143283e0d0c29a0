// Package sync reconciles the local replica with the remote table store.
// Reconciliation is last-write-wins per record, keyed on the updated_at
// timestamp, and runs in two phases: upload local records the remote is
// missing or has older, then download remote records the replica is
// missing or has older.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/store"
)

// DefaultInterval is the period between automatic sync passes.
const DefaultInterval = 60 * time.Second

// tableTimeout bounds a single table's reconciliation.
const tableTimeout = 30 * time.Second

// RemoteClient is the remote table store surface the engine needs.
type RemoteClient interface {
	SelectByUser(ctx context.Context, table, userID string) ([]models.Record, error)
	Upsert(ctx context.Context, table string, records []models.Record) error
}

// Engine synchronizes the local replica tables with the remote store for
// one signed-in user.
type Engine struct {
	store    *store.Store
	client   RemoteClient
	userID   string
	tables   []string
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	syncing bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates an engine over the default table list and interval.
func New(s *store.Store, client RemoteClient, userID string, log *slog.Logger) *Engine {
	return &Engine{
		store:    s,
		client:   client,
		userID:   userID,
		tables:   models.SyncTables(),
		interval: DefaultInterval,
		log:      log,
	}
}

// SetInterval overrides the automatic sync period. Must be called before
// StartAutoSync.
func (e *Engine) SetInterval(d time.Duration) {
	e.interval = d
}

// StartAutoSync runs an immediate pass and then one every interval until
// StopAutoSync. Calling it while already running is a no-op.
func (e *Engine) StartAutoSync(ctx context.Context) {
	e.mu.Lock()
	if e.stop != nil {
		e.mu.Unlock()
		return
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	stop, done := e.stop, e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		e.SyncAll(ctx)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.SyncAll(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	e.log.Info("auto sync started", "interval", e.interval)
}

// StopAutoSync stops the periodic passes and waits for an in-flight pass
// to finish.
func (e *Engine) StopAutoSync() {
	e.mu.Lock()
	stop, done := e.stop, e.done
	e.stop, e.done = nil, nil
	e.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	e.log.Info("auto sync stopped")
}

// SyncAll reconciles every table once. Passes are mutually exclusive: if
// one is already running the call returns immediately. A failing table is
// logged and skipped; the remaining tables still sync.
func (e *Engine) SyncAll(ctx context.Context) {
	e.mu.Lock()
	if e.syncing || e.userID == "" {
		e.mu.Unlock()
		return
	}
	e.syncing = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	for _, table := range e.tables {
		tctx, cancel := context.WithTimeout(ctx, tableTimeout)
		err := e.syncTable(tctx, table)
		cancel()
		if err != nil {
			e.log.Error("table sync failed", "table", table, "error", err)
		}
	}
}

// syncTable reconciles a single table: upload first, then download.
func (e *Engine) syncTable(ctx context.Context, table string) error {
	local := e.loadRecords(table)
	rem, err := e.client.SelectByUser(ctx, table, e.userID)
	if err != nil {
		return fmt.Errorf("fetching remote %s: %w", table, err)
	}
	remoteByID := models.RecordIndex(rem)

	var outgoing []models.Record
	for _, rec := range local {
		id := rec.ID()
		if id == "" {
			continue
		}
		remote, ok := remoteByID[id]
		if !ok || rec.NewerThan(remote) {
			rec.SetUser(e.userID)
			outgoing = append(outgoing, rec)
		}
	}
	if len(outgoing) > 0 {
		if err := e.client.Upsert(ctx, table, outgoing); err != nil {
			return fmt.Errorf("uploading %d records to %s: %w", len(outgoing), table, err)
		}
		e.log.Info("records uploaded", "table", table, "count", len(outgoing))
	}

	localByID := models.RecordIndex(local)
	merged := local
	changed := false
	for _, remote := range rem {
		id := remote.ID()
		if id == "" {
			continue
		}
		existing, ok := localByID[id]
		switch {
		case !ok:
			merged = append(merged, remote)
			changed = true
		case remote.NewerThan(existing):
			for i := range merged {
				if merged[i].ID() == id {
					merged[i] = remote
				}
			}
			changed = true
		}
	}
	if changed {
		if !e.saveRecords(table, merged) {
			return fmt.Errorf("persisting %s locally", table)
		}
		e.log.Info("local replica updated", "table", table, "count", len(merged))
	}
	return nil
}

// LoadUserData replaces every local table wholesale with the remote state.
// Used at sign-in, before the first incremental pass.
func (e *Engine) LoadUserData(ctx context.Context) error {
	if e.userID == "" {
		return fmt.Errorf("no signed-in user")
	}
	for _, table := range e.tables {
		rem, err := e.client.SelectByUser(ctx, table, e.userID)
		if err != nil {
			return fmt.Errorf("loading %s: %w", table, err)
		}
		if !e.saveRecords(table, rem) {
			return fmt.Errorf("persisting %s locally", table)
		}
	}
	e.log.Info("user data loaded", "tables", len(e.tables))
	return nil
}

func (e *Engine) loadRecords(table string) []models.Record {
	records, _ := store.LoadJSON[[]models.Record](e.store, table)
	return records
}

func (e *Engine) saveRecords(table string, records []models.Record) bool {
	if records == nil {
		records = []models.Record{}
	}
	return store.SaveJSON(e.store, table, records)
}
