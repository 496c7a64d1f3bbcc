package fx

import (
	"database/sql"

	"gitwrap/internal/api"
	"gitwrap/internal/config"
	"gitwrap/internal/database"
	"gitwrap/internal/db"
	"gitwrap/internal/logger"
	"gitwrap/internal/metrics"
	"gitwrap/internal/repository"
	"gitwrap/internal/server"
	"gitwrap/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// CoreModule is everything needed to compute and store profiles, without HTTP.
var CoreModule = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewStatsCacheRepository),
	// api client
	fx.Provide(api.NewGitHubClient),
	// svc
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewProfileService),
)

var Module = fx.Options(
	CoreModule,
	// server
	fx.Provide(server.NewOAuthConfig),
	fx.Provide(server.NewServer),
)
