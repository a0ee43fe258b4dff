// Package changefeed keeps the in-memory working set of reservations fresh.
// It fans out one change-feed subscription per tenant (plus a registry
// meta-subscription in the all-tenants scope), reconciles each delta batch
// with a full refetch, and runs the key-handover coupling pass that drives
// reservation statuses.
package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/clock"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// Applier persists reconciliation outcomes (overdue flips, key-coupled
// forced statuses). Implemented by the reservation commands.
type Applier interface {
	ApplyReconciliation(ctx context.Context, tenantID string, res *reservation.Reservation, event *reservation.TransitionEvent) error
}

type Options struct {
	Scope           Scope
	RefetchTimeout  time.Duration
	ActivityWindow  time.Duration
	MaxRetryBackoff time.Duration
	Location        *time.Location
}

type Synchronizer struct {
	store   docstore.Store
	applier Applier
	clock   clock.Clock
	logger  *slog.Logger
	opts    Options

	// mergeMu serializes every merge/reconciliation; concurrent merges must
	// not interleave because consumers read the merged list.
	mergeMu sync.Mutex

	stateMu sync.RWMutex
	merged  map[string][]*reservation.Reservation
	defects map[string][]error

	subsMu   sync.Mutex
	tenants  map[string]*tenantFeed
	registry docstore.Subscription

	activityMu   sync.Mutex
	lastActivity time.Time

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type tenantFeed struct {
	cancel context.CancelFunc
	done   chan struct{}

	// mu guards sub against the resubscribe-vs-teardown race: runFeed swaps
	// the subscription after a stream drop while rebuildTenants or Close may
	// be tearing the feed down.
	mu     sync.Mutex
	sub    docstore.Subscription
	closed bool
}

func (f *tenantFeed) current() docstore.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub
}

// replace installs a resubscribed stream. A feed that was shut down in the
// meantime closes the new subscription instead of leaking it.
func (f *tenantFeed) replace(sub docstore.Subscription) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		sub.Close()
		return false
	}
	f.sub = sub
	return true
}

func (f *tenantFeed) shutdown() {
	f.cancel()
	f.mu.Lock()
	f.closed = true
	sub := f.sub
	f.mu.Unlock()
	sub.Close()
}

func NewSynchronizer(store docstore.Store, applier Applier, clk clock.Clock, logger *slog.Logger, opts Options) *Synchronizer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RefetchTimeout <= 0 {
		opts.RefetchTimeout = 10 * time.Second
	}
	if opts.ActivityWindow <= 0 {
		opts.ActivityWindow = 500 * time.Millisecond
	}
	if opts.MaxRetryBackoff <= 0 {
		opts.MaxRetryBackoff = 30 * time.Second
	}
	return &Synchronizer{
		store:   store,
		applier: applier,
		clock:   clk,
		logger:  logger,
		opts:    opts,
		merged:  map[string][]*reservation.Reservation{},
		defects: map[string][]error{},
		tenants: map[string]*tenantFeed{},
	}
}

// Start establishes the subscriptions for the configured scope and performs
// an initial reconciliation per tenant.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.runCtx, s.runCancel = context.WithCancel(context.WithoutCancel(ctx))

	if !s.opts.Scope.IsAll() {
		return s.watchTenant(s.opts.Scope.TenantID())
	}

	tenantIDs, err := s.fetchTenantRegistry(ctx)
	if err != nil {
		return err
	}
	for _, id := range tenantIDs {
		if werr := s.watchTenant(id); werr != nil {
			return werr
		}
	}
	return s.watchRegistry()
}

// Close tears everything down. Idempotent; waits for any in-flight merge to
// drain before returning.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		if s.runCancel != nil {
			s.runCancel()
		}
		s.subsMu.Lock()
		if s.registry != nil {
			s.registry.Close()
		}
		for _, feed := range s.tenants {
			feed.shutdown()
		}
		s.subsMu.Unlock()
		s.wg.Wait()

		// drain: a merge still holding the lock finishes before we return
		s.mergeMu.Lock()
		s.mergeMu.Unlock() //nolint:staticcheck // lock/unlock pairs as a drain barrier
	})
}

// Reservations returns the merged working set of one tenant. The returned
// slice is a copy; the working set is owned by the synchronizer and mutated
// only by reconciliation.
func (s *Synchronizer) Reservations(tenantID string) []*reservation.Reservation {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make([]*reservation.Reservation, len(s.merged[tenantID]))
	copy(out, s.merged[tenantID])
	return out
}

// All returns the merged working set across every followed tenant.
func (s *Synchronizer) All() []*reservation.Reservation {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	var out []*reservation.Reservation
	for _, rs := range s.merged {
		out = append(out, rs...)
	}
	return out
}

// Defects lists the data-quality errors (undecodable records) found during
// the latest reconciliation of a tenant, for operator attention.
func (s *Synchronizer) Defects(tenantID string) []error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make([]error, len(s.defects[tenantID]))
	copy(out, s.defects[tenantID])
	return out
}

// Active is the debounced activity flag for UI feedback. It carries no
// correctness semantics.
func (s *Synchronizer) Active() bool {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return s.clock.Now().Sub(s.lastActivity) < s.opts.ActivityWindow
}

// Refresh is the manual refetch fallback. Callers impose the timeout through
// ctx; the store call itself does not enforce one.
func (s *Synchronizer) Refresh(ctx context.Context, tenantID string) error {
	return s.reconcile(ctx, tenantID)
}

func (s *Synchronizer) watchTenant(tenantID string) error {
	s.subsMu.Lock()
	if _, exists := s.tenants[tenantID]; exists {
		s.subsMu.Unlock()
		return nil
	}
	s.subsMu.Unlock()

	feedCtx, cancel := context.WithCancel(s.runCtx)
	sub, err := s.subscribeWithBackoff(feedCtx, tenantID, docstore.CollectionReservations)
	if err != nil {
		cancel()
		return err
	}

	feed := &tenantFeed{sub: sub, cancel: cancel, done: make(chan struct{})}
	s.subsMu.Lock()
	s.tenants[tenantID] = feed
	s.subsMu.Unlock()

	if err := s.reconcile(feedCtx, tenantID); err != nil {
		s.logger.Warn("initial reconciliation failed", "tenant_id", tenantID, "error", err)
	}

	s.wg.Add(1)
	go s.runFeed(feedCtx, tenantID, feed)
	return nil
}

func (s *Synchronizer) runFeed(ctx context.Context, tenantID string, feed *tenantFeed) {
	defer s.wg.Done()
	defer close(feed.done)

	for {
		select {
		case <-ctx.Done():
			return
		case delta, ok := <-feed.current().Deltas():
			if !ok {
				// stream dropped: resubscribe with backoff, keep serving the
				// last known-good merged list meanwhile
				s.logger.Error("change feed dropped, resubscribing",
					"tenant_id", tenantID,
					"error", errs.ErrSubscriptionDropped)
				sub, err := s.subscribeWithBackoff(ctx, tenantID, docstore.CollectionReservations)
				if err != nil {
					return
				}
				if !feed.replace(sub) {
					return
				}
				continue
			}

			s.touchActivity()

			if len(delta.Docs) == 0 {
				// disambiguate "legitimately empty" from "transient empty"
				// with one direct refetch
				refetchCtx, cancel := context.WithTimeout(ctx, s.opts.RefetchTimeout)
				err := s.reconcile(refetchCtx, tenantID)
				cancel()
				if err != nil {
					s.logger.Warn("refetch after empty delta failed", "tenant_id", tenantID, "error", err)
				}
				continue
			}

			if err := s.reconcile(ctx, tenantID); err != nil {
				s.logger.Warn("reconciliation failed", "tenant_id", tenantID, "error", err)
			}
		}
	}
}

func (s *Synchronizer) subscribeWithBackoff(ctx context.Context, tenantID, collection string) (docstore.Subscription, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = s.opts.MaxRetryBackoff
	bo.MaxElapsedTime = 0

	var sub docstore.Subscription
	operation := func() error {
		var err error
		sub, err = s.store.Subscribe(ctx, tenantID, collection)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, errs.Mark(err, errs.ErrSubscriptionDropped)
	}
	return sub, nil
}

// reconcile rebuilds one tenant's slice of the working set from a full
// refetch, runs the overdue/key-coupling pass, and swaps the merged list.
// Full rebuilds avoid partial-state bugs from out-of-order deltas.
func (s *Synchronizer) reconcile(ctx context.Context, tenantID string) error {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()

	docs, err := s.store.Query(ctx, docstore.Query{
		TenantID:   tenantID,
		Collection: docstore.CollectionReservations,
	})
	if err != nil {
		return errs.Mark(err, errs.ErrStoreOperationFailed)
	}

	now := s.clock.Now()
	fresh := make([]*reservation.Reservation, 0, len(docs))
	var defects []error

	for _, doc := range docs {
		res, derr := converter.DecodeReservation(doc, s.opts.Location)
		if derr != nil {
			// data-quality defect: exclude the record, surface the error
			defects = append(defects, derr)
			continue
		}
		s.reconcileKey(ctx, tenantID, res, now)
		fresh = append(fresh, res)
	}

	s.stateMu.Lock()
	s.merged[tenantID] = fresh
	s.defects[tenantID] = defects
	s.stateMu.Unlock()
	return nil
}

// reconcileKey applies the overdue flip and the cross-machine coupling for
// one reservation, persisting through the applier when anything changed.
func (s *Synchronizer) reconcileKey(ctx context.Context, tenantID string, res *reservation.Reservation, now time.Time) {
	key := res.Key()
	if key == nil {
		return
	}

	flipped := key.MarkOverdue(now)

	var event *reservation.TransitionEvent
	if forced, ok := reservation.CoupleKeyToReservation(key, res.Status(), now); ok {
		event = &reservation.TransitionEvent{
			ReservationID: res.ID(),
			From:          res.Status(),
			To:            forced,
			At:            now,
		}
		res.ForceStatus(forced)
	}

	if !flipped && event == nil {
		return
	}
	if err := s.applier.ApplyReconciliation(ctx, tenantID, res, event); err != nil {
		s.logger.Error("failed to persist reconciliation",
			"tenant_id", tenantID,
			"reservation_id", res.ID(),
			"error", err)
	}
}

func (s *Synchronizer) touchActivity() {
	s.activityMu.Lock()
	s.lastActivity = s.clock.Now()
	s.activityMu.Unlock()
}

// --- tenant registry (all-tenants scope) ---

type tenantDoc struct {
	ID string `json:"id"`
}

const registryTenantID = "system"

func (s *Synchronizer) fetchTenantRegistry(ctx context.Context) ([]string, error) {
	docs, err := s.store.Query(ctx, docstore.Query{
		TenantID:   registryTenantID,
		Collection: docstore.CollectionTenants,
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		var td tenantDoc
		if jerr := json.Unmarshal(doc.Data, &td); jerr != nil || td.ID == "" {
			ids = append(ids, doc.ID)
			continue
		}
		ids = append(ids, td.ID)
	}
	return ids, nil
}

func (s *Synchronizer) watchRegistry() error {
	sub, err := s.subscribeWithBackoff(s.runCtx, registryTenantID, docstore.CollectionTenants)
	if err != nil {
		return err
	}
	s.subsMu.Lock()
	s.registry = sub
	s.subsMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.runCtx.Done():
				return
			case _, ok := <-sub.Deltas():
				if !ok {
					next, serr := s.subscribeWithBackoff(s.runCtx, registryTenantID, docstore.CollectionTenants)
					if serr != nil {
						return
					}
					s.subsMu.Lock()
					s.registry = next
					s.subsMu.Unlock()
					sub = next
					continue
				}
				s.rebuildTenants()
			}
		}
	}()
	return nil
}

// rebuildTenants fully cancels every per-tenant subscription before creating
// the new set, so a tenant change never causes duplicate delivery.
func (s *Synchronizer) rebuildTenants() {
	s.subsMu.Lock()
	old := s.tenants
	s.tenants = map[string]*tenantFeed{}
	s.subsMu.Unlock()

	for _, feed := range old {
		feed.shutdown()
		<-feed.done
	}

	tenantIDs, err := s.fetchTenantRegistry(s.runCtx)
	if err != nil {
		s.logger.Error("failed to refetch tenant registry", "error", err)
		return
	}
	for _, id := range tenantIDs {
		if werr := s.watchTenant(id); werr != nil {
			s.logger.Error("failed to watch tenant", "tenant_id", id, "error", werr)
		}
	}
}
