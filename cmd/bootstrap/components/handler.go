package components

import (
	"github.com/Gera09az/zentry-web-sub000/internal/handler"
	"github.com/Gera09az/zentry-web-sub000/internal/handler/api"
	"github.com/Gera09az/zentry-web-sub000/internal/handler/middleware"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		usecase.NewTokenValidator,
		api.NewReservationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
