// Package dbtest opens isolated in-memory sqlite databases carrying the
// stockroom schema for repository and service tests.
package dbtest

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

var schema = []string{
	`CREATE TABLE catalog_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT 'units',
  cost NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'Active',
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE vendors (
  id TEXT PRIMARY KEY,
  vendor_name TEXT NOT NULL,
  license_number TEXT,
  gst_number TEXT,
  pan_number TEXT,
  contact_person TEXT,
  contact_mobile TEXT,
  contact_email TEXT,
  mobile_number TEXT,
  full_address TEXT,
  status TEXT NOT NULL DEFAULT 'Active',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  order_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  total NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  unit TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quoted_price NUMERIC,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE billing_records (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_line_id TEXT NOT NULL UNIQUE,
  vendor_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  cost NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE stock_entries (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  unit_cost NUMERIC NOT NULL DEFAULT 0,
  min_threshold NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (item_id, vendor_id)
);`,
	`CREATE TABLE alerts (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  alert_name TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  ended_at DATETIME
);`,
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  mobile_number TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'Active',
  created_by TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE login_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Active',
  login_at DATETIME NOT NULL,
  logout_at DATETIME
);`,
	`CREATE TABLE inventory_requests (
  id TEXT PRIMARY KEY,
  requested_by TEXT NOT NULL,
  total_price NUMERIC NOT NULL DEFAULT 0,
  item_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE inventory_request_items (
  id TEXT PRIMARY KEY,
  request_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL
);`,
	`CREATE TABLE roles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
	`CREATE TABLE features (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
	`CREATE TABLE privileges (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
	`CREATE TABLE role_feature_privileges (
  role_id TEXT NOT NULL,
  feature_id TEXT NOT NULL,
  privilege_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (role_id, feature_id, privilege_id)
);`,
}

// Open returns a fresh database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// Shared-cache sqlite locks tables per connection; keep a single one.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return conn
}
