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

package mongo

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	dconfig "github.com/smartstake/stakeconnect/config"
	"github.com/smartstake/stakeconnect/model"
	"github.com/smartstake/stakeconnect/store"
)

const (
	// AlertsCollectionName refers to the name of the collection of alerts
	AlertsCollectionName = "alerts"

	indexDeviceEventTime = "device_id_event_time"
)

// SetupDataStore returns the mongo data store with its indexes in place
func SetupDataStore(ctx context.Context) (*DataStoreMongo, error) {
	dbClient, err := NewClient(ctx, config.Config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to db")
	}
	dataStore := NewDataStoreWithClient(dbClient, config.Config)
	if err := dataStore.EnsureIndexes(ctx); err != nil {
		_ = dataStore.Close()
		return nil, err
	}
	return dataStore, nil
}

func disconnectClient(parentCtx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(parentCtx, 1*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewClient returns a mongo client
func NewClient(ctx context.Context, c config.Reader) (*mongo.Client, error) {

	clientOptions := mopts.Client()
	mongoURL := c.GetString(dconfig.SettingMongo)
	if !strings.Contains(mongoURL, "://") {
		return nil, errors.Errorf("Invalid mongoURL %q: missing schema.",
			mongoURL)
	}
	clientOptions.ApplyURI(mongoURL)

	username := c.GetString(dconfig.SettingDbUsername)
	if username != "" {
		credentials := mopts.Credential{
			Username: c.GetString(dconfig.SettingDbUsername),
		}
		password := c.GetString(dconfig.SettingDbPassword)
		if password != "" {
			credentials.Password = password
			credentials.PasswordSet = true
		}
		clientOptions.SetAuth(credentials)
	}

	if c.GetBool(dconfig.SettingDbSSL) {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = c.GetBool(dconfig.SettingDbSSLSkipVerify)
		clientOptions.SetTLSConfig(tlsConfig)
	}

	// Set writeconcern to acknowlage after write has propagated to the
	// mongod instance and commited to the file system journal.
	wc := writeconcern.New(writeconcern.W(1), writeconcern.J(true))
	clientOptions.SetWriteConcern(wc)

	// Set 10s timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to mongo server")
	}

	// Validate connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = disconnectClient(context.Background(), client)
		return nil, errors.Wrap(err, "Error reaching mongo server")
	}

	return client, nil
}

// DataStoreMongo is the data storage service
type DataStoreMongo struct {
	// client holds the reference to the client used to communicate with the
	// mongodb server.
	client *mongo.Client
	// dbName contains the name of the stakeconnect database.
	dbName string
}

// NewDataStoreWithClient initializes a DataStore object
func NewDataStoreWithClient(client *mongo.Client, c config.Reader) *DataStoreMongo {
	dbName := c.GetString(dconfig.SettingDbName)

	return &DataStoreMongo{
		client: client,
		dbName: dbName,
	}
}

func (db *DataStoreMongo) alerts() *mongo.Collection {
	return db.client.Database(db.dbName).Collection(AlertsCollectionName)
}

// EnsureIndexes creates the index serving the recent alerts query
func (db *DataStoreMongo) EnsureIndexes(ctx context.Context) error {
	_, err := db.alerts().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "device_id", Value: 1},
			{Key: "event_time", Value: -1},
		},
		Options: mopts.Index().
			SetName(indexDeviceEventTime),
	})
	return errors.Wrap(err, "failed to create the alerts index")
}

// Ping verifies the connection to the database
func (db *DataStoreMongo) Ping(ctx context.Context) error {
	res := db.client.Database(db.dbName).RunCommand(ctx, bson.M{"ping": 1})
	return res.Err()
}

// InsertAlert stores a new alert record
func (db *DataStoreMongo) InsertAlert(ctx context.Context, alert *model.AlertRecord) error {
	if alert == nil {
		return store.ErrNilAlert
	}
	_, err := db.alerts().InsertOne(ctx, alert)
	return errors.Wrap(err, "failed to insert alert")
}

// GetRecentAlerts returns the newest alerts of the device
func (db *DataStoreMongo) GetRecentAlerts(
	ctx context.Context,
	deviceID int64,
	limit int,
) ([]model.AlertRecord, error) {
	findOpts := mopts.Find().
		SetSort(bson.D{
			{Key: "event_time", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})
	cur, err := db.alerts().Find(ctx, bson.M{"device_id": deviceID}, findOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alerts")
	}

	alerts := []model.AlertRecord{}
	if err := cur.All(ctx, &alerts); err != nil {
		return nil, errors.Wrap(err, "failed to read alerts")
	}
	return alerts, nil
}

// Close disconnects the client
func (db *DataStoreMongo) Close() error {
	ctx := context.Background()
	return disconnectClient(ctx, db.client)
}

// DropDatabase drops the stakeconnect database
func (db *DataStoreMongo) DropDatabase(ctx context.Context) error {
	return db.client.Database(db.dbName).Drop(ctx)
}
