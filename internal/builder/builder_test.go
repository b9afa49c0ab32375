package builder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/repository"
	"go.uber.org/zap"
)

func TestSetupLogger(t *testing.T) {
	if _, err := setupLogger("debug", "local"); err != nil {
		t.Errorf("setupLogger(debug) error = %v", err)
	}
	if _, err := setupLogger("loud", "prod"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestSetupSessionStorageSQLite(t *testing.T) {
	app := &App{logger: zap.NewNop()}
	cfg := &config.Config{
		StorageDriver: config.StorageDriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "nested", "coach.db"),
	}

	repo, err := setupSessionStorage(context.Background(), cfg, app)
	if err != nil {
		t.Fatalf("setupSessionStorage() error = %v", err)
	}
	if _, ok := repo.(*repository.SessionSQLite); !ok {
		t.Errorf("repo type = %T", repo)
	}
	if len(app.closers) != 1 {
		t.Fatalf("closers = %d, want 1", len(app.closers))
	}

	app.closeResources()
	if len(app.closers) != 0 {
		t.Error("closers not cleared")
	}
}

func TestSetupSessionCache(t *testing.T) {
	app := &App{logger: zap.NewNop()}

	c, err := setupSessionCache(context.Background(), config.CacheConfig{Driver: config.CacheDriverMemory, TTL: time.Minute}, app)
	if err != nil {
		t.Fatalf("memory cache error = %v", err)
	}
	if _, ok := c.(*repository.SessionMemoryCache); !ok {
		t.Errorf("cache type = %T", c)
	}

	c, err = setupSessionCache(context.Background(), config.CacheConfig{Driver: config.CacheDriverNone}, app)
	if err != nil || c != nil {
		t.Errorf("none driver = %v, %v", c, err)
	}
}
