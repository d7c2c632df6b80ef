package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/calyard/internal/config"
	"github.com/zulandar/calyard/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		db   string
		want string
	}{
		{
			name: "default local",
			cfg:  config.DatabaseConfig{Host: "127.0.0.1", Port: 3306, User: "root"},
			db:   "calyard",
			want: "root@tcp(127.0.0.1:3306)/calyard?parseTime=true",
		},
		{
			name: "password and custom port",
			cfg:  config.DatabaseConfig{Host: "10.0.0.5", Port: 3307, User: "sched", Password: "pw"},
			db:   "calyard_prod",
			want: "sched:pw@tcp(10.0.0.5:3307)/calyard_prod?parseTime=true",
		},
		{
			name: "admin without database",
			cfg:  config.DatabaseConfig{Host: "db.internal", Port: 3306, User: "root"},
			db:   "",
			want: "root@tcp(db.internal:3306)/?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.cfg, tt.db)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnect_SQLiteCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calyard.db")
	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("sqlite file not created: %v", err)
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("Connect error = %v, want unsupported driver", err)
	}
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"workspaces", "workspace_members", "habits", "tasks", "calendar_events", "scheduling_metadata"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s not created", table)
		}
	}
}

func TestSeedWorkspace_Upserts(t *testing.T) {
	db := testDB(t)
	if err := SeedWorkspace(db, "ws-1", "Home", "Europe/Berlin"); err != nil {
		t.Fatalf("SeedWorkspace: %v", err)
	}
	if err := SeedWorkspace(db, "ws-1", "Home office", ""); err != nil {
		t.Fatalf("SeedWorkspace again: %v", err)
	}

	var ws models.Workspace
	if err := db.First(&ws, "id = ?", "ws-1").Error; err != nil {
		t.Fatal(err)
	}
	if ws.Name != "Home office" || ws.Timezone != "UTC" {
		t.Errorf("workspace = %+v, want updated name and UTC", ws)
	}
	var n int64
	db.Model(&models.SchedulingMetadata{}).Where("workspace_id = ?", "ws-1").Count(&n)
	if n != 1 {
		t.Errorf("metadata rows = %d, want 1", n)
	}
}

func TestSeedWorkspace_BadTimezone(t *testing.T) {
	db := testDB(t)
	if err := SeedWorkspace(db, "ws-1", "Home", "Mars/Olympus"); err == nil {
		t.Error("expected timezone error")
	}
}

func TestIsLockError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&mysqldrv.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, true},
		{fmt.Errorf("wrapped: %w", &mysqldrv.MySQLError{Number: 1213}), true},
		{&mysqldrv.MySQLError{Number: 1062}, false},
		{errors.New("plain"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsLockError(tt.err); got != tt.want {
			t.Errorf("IsLockError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
