package controllerImp

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Engine locates the prediction scripts.
type Engine struct {
	Python  string
	Dir     string
	Scripts []string
}

type HealthCtrl struct {
	db     *gorm.DB
	engine Engine
}

func NewHealthCtrl(db *gorm.DB, engine Engine) *HealthCtrl {
	return &HealthCtrl{db: db, engine: engine}
}

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) database(ctx context.Context) sub {
	if h.db == nil {
		return sub{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return sub{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return sub{Err: "ping: " + err.Error()}
	}
	return sub{OK: true}
}

func (h *HealthCtrl) engineCheck() sub {
	if _, err := exec.LookPath(h.engine.Python); err != nil {
		return sub{Err: "interpreter: " + err.Error()}
	}
	for _, s := range h.engine.Scripts {
		p := s
		if !filepath.IsAbs(p) {
			p = filepath.Join(h.engine.Dir, s)
		}
		if _, err := os.Stat(p); err != nil {
			return sub{Err: "script: " + err.Error()}
		}
	}
	return sub{OK: true}
}

// Health reports 503 when the database is down. A missing engine only
// degrades the service since the menu and records still work.
func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := h.database(ctx)
	eng := h.engineCheck()

	status := http.StatusOK
	if !db.OK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": db.OK && eng.OK, "degraded": db.OK && !eng.OK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database": db,
			"engine":   eng,
		},
		"time": time.Now().Format(time.RFC3339),
	})
}
