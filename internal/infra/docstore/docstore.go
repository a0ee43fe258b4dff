// Package docstore is the access layer for the per-tenant document
// collections the engine reads and writes: reservations and amenity rulesets
// per community, a per-user reservation mirror, the tenant registry and the
// audit log.
package docstore

import (
	"context"
	"encoding/json"
	"time"
)

const (
	CollectionReservations = "reservations"
	CollectionRuleSets     = "amenity_rulesets"
	CollectionUserMirror   = "user_reservations"
	CollectionTenants      = "tenants"
	CollectionAudit        = "audit_log"
)

// Document is one stored record. Data holds the raw JSON body.
type Document struct {
	TenantID   string
	Collection string
	ID         string
	Data       json.RawMessage
	UpdatedAt  time.Time
}

// Query selects a collection slice, optionally narrowed by top-level field
// equality on the JSON body.
type Query struct {
	TenantID   string
	Collection string
	Equals     map[string]string
}

type WriteOp string

const (
	OpPut    WriteOp = "put"
	OpDelete WriteOp = "delete"
)

// Write is one element of a best-effort batch.
type Write struct {
	Op         WriteOp
	TenantID   string
	Collection string
	ID         string
	Data       json.RawMessage
}

// Delta is one change-feed batch for a (tenant, collection) subscription.
// Docs may legitimately be empty; consumers disambiguate with a re-fetch.
type Delta struct {
	TenantID   string
	Collection string
	Docs       []Document
}

// Subscription is a change-feed handle. Close is idempotent; after Close the
// delta channel is closed.
type Subscription interface {
	Deltas() <-chan Delta
	Close()
}

// Store is the document-store contract. BatchWrite is a single best-effort
// batched write: there is no cross-document transaction guarantee beyond the
// batch boundary, and a partial failure is reported through BatchResult.
type Store interface {
	Get(ctx context.Context, tenantID, collection, id string) (Document, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	BatchWrite(ctx context.Context, writes []Write) BatchResult
	Subscribe(ctx context.Context, tenantID, collection string) (Subscription, error)
}

// BatchResult carries the per-write outcome of a batch. Errs is indexed
// parallel to the submitted writes; a nil entry means that write applied.
type BatchResult struct {
	Errs []error
}

func (r BatchResult) Err() error {
	for _, e := range r.Errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (r BatchResult) Failed() []int {
	var failed []int
	for i, e := range r.Errs {
		if e != nil {
			failed = append(failed, i)
		}
	}
	return failed
}

func (r BatchResult) AllFailed() bool {
	if len(r.Errs) == 0 {
		return false
	}
	return len(r.Failed()) == len(r.Errs)
}
