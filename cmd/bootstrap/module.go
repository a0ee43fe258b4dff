package bootstrap

import (
	"github.com/Gera09az/zentry-web-sub000/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	components.StoreModule,
	components.EngineModule,
	components.HandlerModule,
)
