package db

import (
	"path/filepath"
	"testing"

	"meal-coupon/registration"

	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *GormStore {
	t.Helper()

	gdb, err := Open(Config{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "coupons.db"),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Sync(gdb); err != nil {
		t.Fatalf("sync: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGormStore(gdb)
}

func TestGormStore(t *testing.T) {
	testRepository(t, func(t *testing.T) registration.Repository {
		return openTestDB(t)
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
