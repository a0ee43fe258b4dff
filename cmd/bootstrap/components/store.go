package components

import (
	"log/slog"

	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		fx.Annotate(
			NewDocumentStore,
			fx.As(new(docstore.Store)),
		),
	),
)

func NewDocumentStore(pool *pgxpool.Pool, logger *slog.Logger) *docstore.PostgresStore {
	return docstore.NewPostgresStore(pool, logger)
}
