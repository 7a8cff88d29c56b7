package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/tienda/internal/health"
)

const shutdownGrace = 10 * time.Second

// tienda serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := boot()
		cfg.Log(log)
		if cfg.Production() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           newRouter(a.routes()),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info("http listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		})

		if cfg.GRPCAddr != "" {
			gsrv, hs := health.NewGRPCServer(log)
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				stop()
				_ = g.Wait()
				return err
			}
			g.Go(func() error {
				log.Info("grpc health listening", "addr", cfg.GRPCAddr)
				return gsrv.Serve(lis)
			})
			g.Go(func() error {
				<-ctx.Done()
				hs.Shutdown()
				gsrv.GracefulStop()
				return nil
			})
			g.Go(func() error { return health.Refresh(ctx, a.gw, hs, 10*time.Second) })
		}

		return g.Wait()
	},
}
