package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Gera09az/zentry-web-sub000/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notifyChannel = "doc_changes"

// PostgresStore keeps every logical collection in one jsonb documents table
// and implements the change feed with LISTEN/NOTIFY. Batches are sent in
// pipeline mode with per-statement results, which is exactly the best-effort
// boundary the dual-write coordinator is specified against.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// EnsureSchema creates the documents table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			tenant_id  text        NOT NULL,
			collection text        NOT NULL,
			id         text        NOT NULL,
			data       jsonb       NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (tenant_id, collection, id)
		)`)
	if err != nil {
		return infra.WrapStoreErr(infra.KindStoreFailure, "failed to ensure documents schema", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID, collection, id string) (Document, error) {
	doc := Document{TenantID: tenantID, Collection: collection, ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT data, updated_at FROM documents WHERE tenant_id = $1 AND collection = $2 AND id = $3`,
		tenantID, collection, id,
	).Scan(&doc.Data, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Document{}, infra.WrapStoreErr(infra.KindNotFound, "document not found", err)
		}
		return Document{}, infra.WrapStoreErr(infra.KindStoreFailure, "failed to get document", err)
	}
	return doc, nil
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Document, error) {
	sql := `SELECT id, data, updated_at FROM documents WHERE tenant_id = $1 AND collection = $2`
	args := []any{q.TenantID, q.Collection}
	for field, want := range q.Equals {
		args = append(args, field, want)
		sql += fmt.Sprintf(" AND data->>$%d = $%d", len(args)-1, len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapStoreErr(infra.KindStoreFailure, "failed to query documents", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc := Document{TenantID: q.TenantID, Collection: q.Collection}
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.UpdatedAt); err != nil {
			return nil, infra.WrapStoreErr(infra.KindStoreFailure, "failed to scan document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapStoreErr(infra.KindStoreFailure, "failed to read documents", err)
	}
	return out, nil
}

func (s *PostgresStore) BatchWrite(ctx context.Context, writes []Write) BatchResult {
	result := BatchResult{Errs: make([]error, len(writes))}
	if len(writes) == 0 {
		return result
	}

	batch := &pgx.Batch{}
	for _, w := range writes {
		switch w.Op {
		case OpDelete:
			batch.Queue(
				`DELETE FROM documents WHERE tenant_id = $1 AND collection = $2 AND id = $3`,
				w.TenantID, w.Collection, w.ID)
		default:
			batch.Queue(
				`INSERT INTO documents (tenant_id, collection, id, data, updated_at)
				 VALUES ($1, $2, $3, $4, now())
				 ON CONFLICT (tenant_id, collection, id)
				 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
				w.TenantID, w.Collection, w.ID, w.Data)
		}
		batch.Queue(`SELECT pg_notify($1, $2)`, notifyChannel, notifyPayload(w))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range writes {
		if _, err := br.Exec(); err != nil {
			result.Errs[i] = infra.WrapStoreErr(infra.KindStoreFailure, "batch write failed", err)
		}
		// notify result; a lost notification only delays reconciliation
		if _, err := br.Exec(); err != nil && s.logger != nil {
			s.logger.Warn("failed to notify document change", "error", err)
		}
	}
	return result
}

func notifyPayload(w Write) string {
	payload, _ := json.Marshal(map[string]string{
		"tenant_id":  w.TenantID,
		"collection": w.Collection,
		"id":         w.ID,
		"op":         string(w.Op),
	})
	return string(payload)
}

type postgresSub struct {
	tenantID   string
	collection string
	ch         chan Delta
	cancel     context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once
}

func (s *postgresSub) Deltas() <-chan Delta { return s.ch }

func (s *postgresSub) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *PostgresStore) Subscribe(ctx context.Context, tenantID, collection string) (Subscription, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, infra.WrapStoreErr(infra.KindStreamClosed, "failed to acquire listener connection", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, infra.WrapStoreErr(infra.KindStreamClosed, "failed to listen for document changes", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &postgresSub{
		tenantID:   tenantID,
		collection: collection,
		ch:         make(chan Delta, 16),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.ch)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				if s.logger != nil {
					s.logger.Error("document change stream dropped", "error", err)
				}
				return
			}

			var change struct {
				TenantID   string `json:"tenant_id"`
				Collection string `json:"collection"`
				ID         string `json:"id"`
				Op         string `json:"op"`
			}
			if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
				continue
			}
			if change.TenantID != tenantID || change.Collection != collection {
				continue
			}

			delta := Delta{TenantID: tenantID, Collection: collection}
			if !strings.EqualFold(change.Op, string(OpDelete)) {
				if doc, err := s.Get(subCtx, tenantID, collection, change.ID); err == nil {
					delta.Docs = []Document{doc}
				}
			}
			select {
			case sub.ch <- delta:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}
