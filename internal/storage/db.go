package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stockbridge/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS bundle_mappings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store TEXT NOT NULL,
  storefrontSku TEXT NOT NULL,
  warehouseSku TEXT NOT NULL,
  componentQty INTEGER NOT NULL DEFAULT 1,
  active INTEGER NOT NULL DEFAULT 1,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(store, storefrontSku, warehouseSku)
);
CREATE INDEX IF NOT EXISTS idx_bundle_mappings_store_sku ON bundle_mappings(store, storefrontSku);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  store TEXT NOT NULL,
  dryRun INTEGER NOT NULL DEFAULT 0,
  statsJson TEXT NOT NULL,
  errorsJson TEXT NOT NULL,
  mismatchesJson TEXT NOT NULL,
  durationMs INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS synced_orders (
  store TEXT NOT NULL,
  orderId INTEGER NOT NULL,
  orderNumber INTEGER NOT NULL,
  warehouseGuid TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(store, orderId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertBundleMappings(mappings []internal.BundleMapping) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO bundle_mappings (store, storefrontSku, warehouseSku, componentQty, active)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(store, storefrontSku, warehouseSku) DO UPDATE SET
  componentQty=excluded.componentQty,
  active=excluded.active,
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, mapping := range mappings {
		active := 0
		if mapping.Active {
			active = 1
		}
		if _, err := stmt.Exec(mapping.Store, mapping.StorefrontSKU, mapping.WarehouseSKU, mapping.ComponentQty, active); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListBundleMappings(store string) ([]internal.BundleMapping, error) {
	rows, err := d.conn.Query(`
SELECT id, store, storefrontSku, warehouseSku, componentQty, active
FROM bundle_mappings WHERE store = ? ORDER BY storefrontSku, warehouseSku
`, store)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.BundleMapping
	for rows.Next() {
		var mapping internal.BundleMapping
		var active int
		if err := rows.Scan(&mapping.ID, &mapping.Store, &mapping.StorefrontSKU, &mapping.WarehouseSKU, &mapping.ComponentQty, &active); err != nil {
			return nil, err
		}
		mapping.Active = active != 0
		out = append(out, mapping)
	}
	return out, rows.Err()
}

// InsertRun records one sync run. Stats, errors and mismatches are stored
// as JSON documents; nil marshals to "null", which is fine for kinds that
// have no mismatch output.
func (d *DB) InsertRun(kind, store string, dryRun bool, stats, itemErrors, mismatches any, duration time.Duration) (int64, error) {
	statsJSON, _ := json.Marshal(stats)
	errorsJSON, _ := json.Marshal(itemErrors)
	mismJSON, _ := json.Marshal(mismatches)

	dry := 0
	if dryRun {
		dry = 1
	}
	result, err := d.conn.Exec(`
INSERT INTO runs (kind, store, dryRun, statsJson, errorsJson, mismatchesJson, durationMs)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, kind, store, dry, string(statsJSON), string(errorsJSON), string(mismJSON), duration.Milliseconds())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) GetRun(id int) (*internal.RunRow, error) {
	var row internal.RunRow
	var dry int
	err := d.conn.QueryRow(`
SELECT id, kind, store, dryRun, statsJson, errorsJson, mismatchesJson, durationMs, createdAt
FROM runs WHERE id = ?
`, id).Scan(&row.ID, &row.Kind, &row.Store, &dry, &row.StatsJSON, &row.ErrorsJSON, &row.MismJSON, &row.DurationMs, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.DryRun = dry != 0
	return &row, nil
}

func (d *DB) MarkOrderSynced(store string, orderID int64, orderNumber int, warehouseGuid string) error {
	_, err := d.conn.Exec(`
INSERT INTO synced_orders (store, orderId, orderNumber, warehouseGuid)
VALUES (?, ?, ?, ?)
ON CONFLICT(store, orderId) DO UPDATE SET warehouseGuid = excluded.warehouseGuid
`, store, orderID, orderNumber, warehouseGuid)
	return err
}

// SyncedOrderGuid reports the warehouse guid a storefront order was
// synced under, or "" when the order has not been synced.
func (d *DB) SyncedOrderGuid(store string, orderID int64) (string, error) {
	var guid string
	err := d.conn.QueryRow(`SELECT warehouseGuid FROM synced_orders WHERE store = ? AND orderId = ?`, store, orderID).Scan(&guid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return guid, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
