package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"meal-coupon/registration"
	"meal-coupon/service"
	"meal-coupon/utils"
	"meal-coupon/web/controllers"
	"meal-coupon/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the registration and scanning HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.shutdown()

			if !a.cfg.LogDev {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			notifier, err := a.notifier()
			if err != nil {
				return err
			}
			svc := a.service(registration.WithNotifier(notifier))
			uploads, err := a.uploads()
			if err != nil {
				return err
			}

			limiter := middleware.NewRateLimiter(a.cfg.RateLimit, a.cfg.RateLimitWindow)
			limiter.StartCleanup(ctx, 10*time.Minute)

			h := controllers.New(svc, a.codec(), uploads,
				controllers.WithLogger(a.log),
				controllers.WithQRImageEndpoint(a.cfg.QRImageEndpoint),
			)
			routerCfg := controllers.RouterConfig{
				CORSOrigins: a.cfg.CORSOrigins,
				Limiter:     limiter,
				Ping:        a.ping,
				Log:         a.log,
			}
			if a.cfg.StorageDriver == "disk" {
				routerCfg.UploadsDir = a.cfg.StorageDir
				routerCfg.UploadsPath = a.cfg.PublicUploads
			}

			addr, done, err := service.Start(ctx, a.cfg.Addr, controllers.NewRouter(h, routerCfg), a.log)
			if err != nil {
				return err
			}
			if host, err := utils.GetHostIP(); err == nil {
				a.log.Info("scanning stations can connect",
					zap.String("url", utils.StationURL(addr.String(), host)),
					zap.Bool("signed_qr", a.codec().Signed()),
					zap.String("store", a.cfg.DBDriver),
				)
			}

			err = <-done
			waitNotifications(svc, 30*time.Second, a.log)
			return err
		},
	}
}

// waitNotifications lets queued coupon emails finish before exit.
func waitNotifications(svc *registration.Service, timeout time.Duration, log *zap.Logger) {
	finished := make(chan struct{})
	go func() {
		svc.Wait()
		close(finished)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	select {
	case <-finished:
	case <-ctx.Done():
		log.Warn("exiting with coupon emails still in flight")
	}
}
