package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GrainArc/SketchMap/config"
	"github.com/GrainArc/SketchMap/logging"
	"github.com/GrainArc/SketchMap/models"
	"github.com/GrainArc/SketchMap/routers"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dataset API, icon catalogue and drawing websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				app.cfg.Server.Addr = addr
			}
			return app.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := logging.NewLogger("server")
	gin.SetMode(a.cfg.Server.Mode)

	if err := models.InitDB(a.cfg.Database); err != nil {
		return err
	}
	if a.viper != nil && a.viper.ConfigFileUsed() != "" {
		config.Watch(a.viper, func(cfg config.Config) {
			logging.Configure(cfg.Log)
			log.WithField("level", cfg.Log.Level).Info("config reloaded")
		})
	}

	engine := routers.NewEngine(routers.Deps{DB: models.GetDB(), Config: a.cfg})
	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: engine}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
