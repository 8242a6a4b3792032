package main

import (
	"appforge/internal/api"
	"appforge/internal/api/apps"
	"appforge/internal/config"
	"appforge/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(serveOptions(e.cfg))
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "HTTP listen port")
	cmd.Flags().Int("concurrency", service.DefaultConcurrency, "max concurrent GitHub requests per listing")
	return cmd
}

// serveOptions HTTP 服务的 fx 依赖图
func serveOptions(cfg config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newRegistry,
			newRecorder,
			newGateway,
			newCatalogService,
			func(s *service.CatalogService) apps.Catalog { return s },
		),
		fx.Decorate(func(l *zap.Logger) *zap.Logger {
			return l.With(zap.String("service", "appforge"))
		}),
		fx.Invoke(api.Run),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{
				Logger: l,
			}
		}),
	)
}
