package fsimport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/db"
	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

// catalogedSkew is added to the stamp so a freshness query comparing
// updated_at against cataloged_at does not immediately re-select the item on
// clock or transaction-ordering jitter.
const catalogedSkew = time.Minute

// Options configures one import run.
type Options struct {
	// ChunkSize bounds how many upserts are in flight within a phase.
	ChunkSize   int
	ResourceID  uuid.UUID
	APIURL      string
	URLTemplate string
}

// Result summarizes a reconciled batch. Per-entry failures are counted, not
// surfaced: batch operations always return a summary.
type Result struct {
	Processed           int         `json:"processed"`
	CreatedFunds        int         `json:"created_funds"`
	CreatedDescriptions int         `json:"created_descriptions"`
	CreatedCases        int         `json:"created_cases"`
	LinkedCopies        int         `json:"linked_copies"`
	Skipped             int         `json:"skipped"`
	Failed              int         `json:"failed"`
	CatalogedIDs        []uuid.UUID `json:"cataloged_ids"`
}

// Reconciler upserts parsed references into the catalog level by level.
// It runs one batch at a time; callers serialize Reconcile invocations.
type Reconciler struct {
	pool  db.Pool
	store *catalog.Store
	opts  Options
	log   *zap.Logger

	mu  sync.Mutex
	res *Result
}

// NewReconciler creates a reconciler over the given pool.
func NewReconciler(pool db.Pool, opts Options) *Reconciler {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 10
	}
	return &Reconciler{
		pool:  pool,
		store: catalog.NewStore(pool),
		opts:  opts,
		log:   zap.L().With(zap.String("component", "fsimport.reconcile")),
	}
}

// entry is one code of one parsed item, the unit of work within a phase.
type entry struct {
	item     ParsedItem
	fundCode string
	descCode string
	caseCode string
}

// Reconcile runs the phased upsert cascade over a batch. Phases are strict
// barriers: every fund exists before any description is written, and every
// description before any case. Within a phase, distinct nodes are processed
// concurrently up to ChunkSize; entries of the same node run sequentially.
// A failed entry rolls back its own transaction and is counted, never
// aborting the batch.
func (r *Reconciler) Reconcile(ctx context.Context, batch []ParsedItem) (*Result, error) {
	cache := newRequestCache()
	defer cache.purge()

	r.mu.Lock()
	r.res = &Result{}
	r.mu.Unlock()

	var descEntries, caseEntries []entry
	for _, item := range batch {
		for _, code := range item.Codes {
			f, d, c := SplitCode(code, item.ArchiveCode)
			if f == "" || d == "" {
				r.count(func(res *Result) { res.Skipped++ })
				continue
			}
			e := entry{item: item, fundCode: f, descCode: d, caseCode: c}
			if c == "" {
				descEntries = append(descEntries, e)
			} else {
				caseEntries = append(caseEntries, e)
			}
		}
	}
	all := append(append([]entry{}, descEntries...), caseEntries...)

	if err := r.fundPhase(ctx, cache, all); err != nil {
		return r.result(), err
	}
	if err := r.descriptionPhase(ctx, cache, all); err != nil {
		return r.result(), err
	}

	var cataloged []uuid.UUID
	var catalogedMu sync.Mutex
	collect := func(id uuid.UUID) {
		catalogedMu.Lock()
		cataloged = append(cataloged, id)
		catalogedMu.Unlock()
	}

	if err := r.completionPhase(ctx, descEntries, func(e entry) string {
		return descKey(e.item.ArchiveID, e.fundCode, e.descCode)
	}, func(ctx context.Context, e entry) error {
		return r.completeDescription(ctx, cache, e, collect)
	}); err != nil {
		return r.result(), err
	}

	if err := r.completionPhase(ctx, caseEntries, func(e entry) string {
		return descKey(e.item.ArchiveID, e.fundCode, e.descCode) + "|" + e.caseCode
	}, func(ctx context.Context, e entry) error {
		return r.completeCase(ctx, cache, e, collect)
	}); err != nil {
		return r.result(), err
	}

	if err := r.stampPhase(ctx, cataloged); err != nil {
		return r.result(), err
	}

	return r.result(), nil
}

func (r *Reconciler) count(fn func(*Result)) {
	r.mu.Lock()
	fn(r.res)
	r.mu.Unlock()
}

func (r *Reconciler) result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res
}

// fundPhase upserts every distinct (archive, fund code) pair and caches the
// resulting ids. Runs to completion before any description is written.
func (r *Reconciler) fundPhase(ctx context.Context, cache *requestCache, entries []entry) error {
	type fundNode struct {
		archiveID uuid.UUID
		code      string
	}
	nodes := map[string]fundNode{}
	for _, e := range entries {
		key := fundKey(e.item.ArchiveID, e.fundCode)
		nodes[key] = fundNode{archiveID: e.item.ArchiveID, code: e.fundCode}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ChunkSize)
	for _, key := range sortedKeys(nodes) {
		node := nodes[key]
		g.Go(func() error {
			up, err := r.store.UpsertFund(ctx, node.archiveID, node.code)
			if err != nil {
				r.log.Warn("fund upsert failed", zap.String("code", node.code), zap.Error(err))
				return nil
			}
			cache.setFund(key, up.ID)
			if up.Created {
				r.count(func(res *Result) { res.CreatedFunds++ })
			}
			return nil
		})
	}
	return g.Wait()
}

// descriptionPhase upserts every distinct description under the funds
// resolved by the fund phase.
func (r *Reconciler) descriptionPhase(ctx context.Context, cache *requestCache, entries []entry) error {
	type descNode struct {
		fundKey string
		code    string
	}
	nodes := map[string]descNode{}
	for _, e := range entries {
		key := descKey(e.item.ArchiveID, e.fundCode, e.descCode)
		nodes[key] = descNode{fundKey: fundKey(e.item.ArchiveID, e.fundCode), code: e.descCode}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ChunkSize)
	for _, key := range sortedKeys(nodes) {
		node := nodes[key]
		g.Go(func() error {
			fundID, ok := cache.fund(node.fundKey)
			if !ok {
				// Fund upsert failed earlier; dependent entries are counted
				// when their completion runs.
				return nil
			}
			up, err := r.store.UpsertDescription(ctx, fundID, node.code)
			if err != nil {
				r.log.Warn("description upsert failed", zap.String("code", node.code), zap.Error(err))
				return nil
			}
			cache.setDescription(key, up.ID)
			if up.Created {
				r.count(func(res *Result) { res.CreatedDescriptions++ })
			}
			return nil
		})
	}
	return g.Wait()
}

// completionPhase runs per-entry completions grouped by node key, one
// sequential worker per distinct node, at most ChunkSize nodes in flight.
func (r *Reconciler) completionPhase(ctx context.Context, entries []entry, key func(entry) string, complete func(context.Context, entry) error) error {
	groups := map[string][]entry{}
	for _, e := range entries {
		k := key(e)
		groups[k] = append(groups[k], e)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ChunkSize)
	for _, k := range sortedKeys(groups) {
		group := groups[k]
		g.Go(func() error {
			for _, e := range group {
				if err := complete(ctx, e); err != nil {
					r.log.Warn("entry failed",
						zap.String("fund", e.fundCode),
						zap.String("description", e.descCode),
						zap.String("case", e.caseCode),
						zap.Error(err))
					r.count(func(res *Result) { res.Failed++ })
					continue
				}
				r.count(func(res *Result) { res.Processed++ })
			}
			return nil
		})
	}
	return g.Wait()
}

// completeDescription finishes a description-level entry in one transaction:
// online copy link plus a year range when the description has none yet.
func (r *Reconciler) completeDescription(ctx context.Context, cache *requestCache, e entry, collect func(uuid.UUID)) error {
	descID, ok := cache.description(descKey(e.item.ArchiveID, e.fundCode, e.descCode))
	if !ok {
		return eris.Errorf("fsimport: description %s-%s not resolved", e.fundCode, e.descCode)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "fsimport: begin description tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	s := r.store.WithTx(tx)

	up, err := s.UpsertDescriptionOnlineCopy(ctx, r.opts.ResourceID, descID,
		r.opts.APIURL, apiParams(e.item.DGS), fmt.Sprintf(r.opts.URLTemplate, e.item.DGS))
	if err != nil {
		return err
	}
	if up.Created {
		r.count(func(res *Result) { res.LinkedCopies++ })
	}

	if err := r.attachYears(ctx, e.item.DateRange, func() (int, error) {
		return s.CountDescriptionYears(ctx, descID)
	}, func(start, end int) error {
		return s.CreateDescriptionYear(ctx, descID, start, end)
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "fsimport: commit description tx")
	}
	collect(e.item.ItemID)
	return nil
}

// completeCase finishes a case-level entry in one transaction: case upsert,
// online copy link, and a year range when the case has none yet.
func (r *Reconciler) completeCase(ctx context.Context, cache *requestCache, e entry, collect func(uuid.UUID)) error {
	descID, ok := cache.description(descKey(e.item.ArchiveID, e.fundCode, e.descCode))
	if !ok {
		return eris.Errorf("fsimport: description %s-%s not resolved", e.fundCode, e.descCode)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "fsimport: begin case tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	s := r.store.WithTx(tx)

	fullCode := fmt.Sprintf("%s/%s/%s/%s", e.item.ArchiveCode, e.fundCode, e.descCode, e.caseCode)
	caseUp, err := s.UpsertCase(ctx, descID, e.caseCode, e.item.Title, fullCode)
	if err != nil {
		return err
	}
	if caseUp.Created {
		r.count(func(res *Result) { res.CreatedCases++ })
	}

	copyUp, err := s.UpsertCaseOnlineCopy(ctx, r.opts.ResourceID, caseUp.ID,
		r.opts.APIURL, apiParams(e.item.DGS), fmt.Sprintf(r.opts.URLTemplate, e.item.DGS))
	if err != nil {
		return err
	}
	if copyUp.Created {
		r.count(func(res *Result) { res.LinkedCopies++ })
	}

	if err := r.attachYears(ctx, e.item.DateRange, func() (int, error) {
		return s.CountCaseYears(ctx, caseUp.ID)
	}, func(start, end int) error {
		return s.CreateCaseYear(ctx, caseUp.ID, start, end)
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "fsimport: commit case tx")
	}
	collect(e.item.ItemID)
	return nil
}

// attachYears adds a year range only when the node has none and the source
// date yields one. Existing ranges are never touched.
func (r *Reconciler) attachYears(_ context.Context, dateRange string, countYears func() (int, error), create func(start, end int) error) error {
	if dateRange == "" {
		return nil
	}
	n, err := countYears()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	start, end, ok := parser.ParseDate(dateRange)
	if !ok {
		return nil
	}
	return create(start, end)
}

// stampPhase marks all successfully completed items as cataloged with the
// forward skew, deduplicating items that produced several entries.
func (r *Reconciler) stampPhase(ctx context.Context, cataloged []uuid.UUID) error {
	if len(cataloged) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool, len(cataloged))
	ids := make([]uuid.UUID, 0, len(cataloged))
	for _, id := range cataloged {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	if err := r.store.StampCataloged(ctx, ids, time.Now().Add(catalogedSkew)); err != nil {
		return err
	}
	r.count(func(res *Result) { res.CatalogedIDs = ids })
	return nil
}

func apiParams(dgs string) []byte {
	params, _ := json.Marshal(map[string]string{"dgs": dgs})
	return params
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
