package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-coupon/config"
	"meal-coupon/coupon"
	"meal-coupon/registration"
	"meal-coupon/utils"
	"meal-coupon/web/db"
	"meal-coupon/web/email"
	"meal-coupon/web/storage"
	"meal-coupon/web/telegram"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	repo  registration.Repository
	ping  func(ctx context.Context) error
	close func() error
}

func loadApp() (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := utils.LoadEnv(files...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, err := utils.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, close: func() error { return nil }}
	if err := a.openRepository(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openRepository() error {
	if a.cfg.DBDriver == "memory" {
		a.log.Warn("using in-memory registration store, data is lost on exit")
		a.repo = db.NewMemoryStore()
		return nil
	}

	gdb, err := db.Open(db.Config{
		Driver:       a.cfg.DBDriver,
		DSN:          a.cfg.DBDSN,
		MaxOpenConns: a.cfg.DBMaxOpenConns,
		LogLevel:     logger.Warn,
	})
	if err != nil {
		return err
	}
	if err := db.Sync(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	a.repo = db.NewGormStore(gdb)
	a.ping = sqlDB.PingContext
	a.close = sqlDB.Close
	return nil
}

func (a *app) codec() *coupon.Codec {
	return coupon.NewCodec(a.cfg.QRSecret)
}

func (a *app) service(opts ...registration.Option) *registration.Service {
	base := []registration.Option{
		registration.WithMenu(a.cfg.Menu),
		registration.WithLogger(a.log),
		registration.WithNotifyTimeout(a.cfg.NotifyTimeout),
	}
	return registration.NewService(a.repo, append(base, opts...)...)
}

// notifier combines the coupon email and the organiser chat alert. It returns nil
// when neither is configured.
func (a *app) notifier() (registration.Notifier, error) {
	var ns registration.Notifiers
	if a.cfg.SMTP.Configured() {
		ns = append(ns, email.NewDispatcher(email.NewSMTPMailer(a.cfg.SMTP), a.codec(), a.cfg.Menu, a.cfg.QRImageEndpoint))
	} else {
		a.log.Warn("SMTP is not configured, coupon emails are disabled")
	}
	if a.cfg.TelegramToken != "" {
		alerter, err := telegram.New(a.cfg.TelegramToken, a.cfg.TelegramChatID, a.cfg.Menu)
		if err != nil {
			return nil, err
		}
		ns = append(ns, alerter)
	}

	switch len(ns) {
	case 0:
		return nil, nil
	case 1:
		return ns[0], nil
	}
	return ns, nil
}

func (a *app) uploads() (storage.ObjectStore, error) {
	if a.cfg.StorageDriver == "http" {
		return storage.NewHTTPStore(a.cfg.StorageURL, a.cfg.StorageBucket, a.cfg.StorageAPIKey,
			&http.Client{Timeout: 30 * time.Second}), nil
	}
	return storage.NewDiskStore(a.cfg.StorageDir, a.cfg.PublicUploads)
}

func (a *app) shutdown() {
	if err := a.close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	a.log.Sync()
}
