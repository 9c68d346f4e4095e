package cmd

import (
	"cloud-manager/core/loader"
	"cloud-manager/core/logger"
	"cloud-manager/core/middleware/auth"
	"cloud-manager/core/middleware/rayid"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/status"
	"cloud-manager/feature/changes"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveTypes []string

// serveCmd starts the read-only HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the change report server",
	Long:  `Starts the HTTP server exposing classification reports. The server never syncs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()

		types, err := selectTypes(serveTypes, resourceTypes)
		if err != nil {
			return err
		}

		// Reports served over HTTP must not affect the process exit code.
		deps := reconcile.Deps{Logger: logg, Status: &status.Aggregator{}}
		targets, err := rt.targets(ctx, types, deps)
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID must be first to trace everything
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{"/health"}}))
		if !rt.cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, report endpoints are unauthenticated")
		}

		j, err := rt.openJournal(ctx)
		if err != nil {
			return err
		}
		var history changes.History
		if j != nil {
			history = j
		}

		mgr := loader.NewManager(logg)
		mgr.Register(changes.NewFeature(targets, history, logg))
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			errCh <- app.Listen(rt.cfg.Server.Address())
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logg.Info("Shutting down server...")
			return app.Shutdown()
		}
	},
}

func init() {
	serveCmd.Flags().StringSliceVar(&serveTypes, "types", nil, "Resource types to serve (default all)")
	RootCmd.AddCommand(serveCmd)
}
