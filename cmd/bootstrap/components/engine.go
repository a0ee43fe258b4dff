package components

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/changefeed"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/audit"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/notify"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/clock"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/config"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/commands"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/queries"

	"go.uber.org/fx"
)

var EngineModule = fx.Module("engine",
	fx.Provide(
		clock.NewRealClock,
		NewLocation,
		NewReservationEngine,
	),
	fx.Invoke(StartSynchronizer),
)

func NewLocation(cfg config.Config) (*time.Location, error) {
	return time.LoadLocation(cfg.Sync.TimeZone)
}

// applierRelay breaks the construction cycle between the synchronizer (needs
// an Applier) and the command service (needs the synchronizer as its working
// set). Reconciliation outcomes before Bind are dropped; the next pass
// replays them.
type applierRelay struct {
	target atomic.Pointer[changefeed.Applier]
}

func (r *applierRelay) Bind(a changefeed.Applier) {
	r.target.Store(&a)
}

func (r *applierRelay) ApplyReconciliation(ctx context.Context, tenantID string, res *reservation.Reservation, event *reservation.TransitionEvent) error {
	target := r.target.Load()
	if target == nil {
		return nil
	}
	return (*target).ApplyReconciliation(ctx, tenantID, res, event)
}

func NewReservationEngine(
	store docstore.Store,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
	loc *time.Location,
) (*changefeed.Synchronizer, commands.ReservationCommands, queries.ReservationQueries) {
	relay := &applierRelay{}

	synchronizer := changefeed.NewSynchronizer(store, relay, clk, logger, changefeed.Options{
		Scope:           changefeed.ParseScope(cfg.Sync.Scope),
		RefetchTimeout:  cfg.Sync.RefetchTimeout,
		ActivityWindow:  cfg.Sync.ActivityWindow,
		MaxRetryBackoff: cfg.Sync.MaxRetryBackoff,
		Location:        loc,
	})

	cmds := commands.NewReservationCommands(
		store,
		commands.NewDualWriter(store, logger),
		synchronizer,
		audit.NewSink(store, logger),
		notify.NewDispatcher(logger),
		clk,
		loc,
		logger,
	)
	relay.Bind(cmds.(changefeed.Applier))

	qrys := queries.NewReservationQueries(synchronizer, store, clk, loc)

	return synchronizer, cmds, qrys
}

func StartSynchronizer(lc fx.Lifecycle, synchronizer *changefeed.Synchronizer, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting change-feed synchronizer")
			return synchronizer.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			logger.Info("stopping change-feed synchronizer")
			synchronizer.Close()
			return nil
		},
	})
}
