// Copyright 2025 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package postgres is the PostgreSQL alert store.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/pkg/errors"

	dconfig "github.com/smartstake/stakeconnect/config"
	"github.com/smartstake/stakeconnect/model"
	"github.com/smartstake/stakeconnect/store"
)

// AlertsTableName is the name of the table of persisted alerts
const AlertsTableName = "alerts"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + AlertsTableName + ` (
		id              BIGSERIAL PRIMARY KEY,
		device_id       BIGINT NOT NULL,
		event_time      TEXT NOT NULL,
		detected_object TEXT NOT NULL,
		base64_image    TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS alerts_device_id_event_time_idx
		ON ` + AlertsTableName + ` (device_id, event_time DESC)`,
}

// SetupDataStore connects to the database configured in the global
// configuration and bootstraps the schema
func SetupDataStore(ctx context.Context) (*DataStorePostgres, error) {
	pool, err := NewPool(ctx, config.Config)
	if err != nil {
		return nil, err
	}
	ds := NewDataStoreWithPool(pool)
	if err := ds.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ds, nil
}

// NewPool returns a connection pool to the configured database
func NewPool(ctx context.Context, c config.Reader) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.GetString(dconfig.SettingPostgresURL))
	if err != nil {
		return nil, errors.Wrap(err, "invalid postgres URL")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "error reaching postgres server")
	}
	return pool, nil
}

// DataStorePostgres is the data storage service
type DataStorePostgres struct {
	pool *pgxpool.Pool
}

// NewDataStoreWithPool initializes a DataStore object
func NewDataStoreWithPool(pool *pgxpool.Pool) *DataStorePostgres {
	return &DataStorePostgres{pool: pool}
}

// EnsureSchema creates the alerts table and its index if missing
func (db *DataStorePostgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create the alerts schema")
		}
	}
	return nil
}

// Ping verifies the connection to the database
func (db *DataStorePostgres) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// InsertAlert stores a new alert record
func (db *DataStorePostgres) InsertAlert(
	ctx context.Context,
	alert *model.AlertRecord,
) error {
	if alert == nil {
		return store.ErrNilAlert
	}
	query := `
		INSERT INTO ` + AlertsTableName + ` (
			device_id, event_time, detected_object, base64_image
		)
		VALUES ($1, $2, $3, $4)
	`
	_, err := db.pool.Exec(ctx, query,
		alert.DeviceID,
		alert.EventTime,
		alert.DetectedObject,
		alert.Image,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert alert")
	}
	return nil
}

// GetRecentAlerts returns the newest alerts of the device
func (db *DataStorePostgres) GetRecentAlerts(
	ctx context.Context,
	deviceID int64,
	limit int,
) ([]model.AlertRecord, error) {
	query := `
		SELECT device_id, event_time, detected_object, base64_image
		FROM ` + AlertsTableName + `
		WHERE device_id = $1
		ORDER BY event_time DESC, id DESC
		LIMIT $2
	`
	rows, err := db.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	alerts := []model.AlertRecord{}
	for rows.Next() {
		var alert model.AlertRecord
		if err := rows.Scan(
			&alert.DeviceID,
			&alert.EventTime,
			&alert.DetectedObject,
			&alert.Image,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert")
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read alerts")
	}
	return alerts, nil
}

// Close releases the connection pool
func (db *DataStorePostgres) Close() error {
	db.pool.Close()
	return nil
}

// DropAlerts deletes the alerts table
func (db *DataStorePostgres) DropAlerts(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `DROP TABLE IF EXISTS `+AlertsTableName)
	return err
}
