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

package config

import (
	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	// SettingListen is the config key for the listen address
	SettingListen = "listen"
	// SettingListenDefault is the default value for the listen address
	SettingListenDefault = ":8080"

	// SettingNatsURI is the config key for the nats uri
	SettingNatsURI = "nats_uri"
	// SettingNatsURIDefault is the default value for the nats uri
	SettingNatsURIDefault = "nats://localhost:4222"

	// SettingBrokerConnectTimeout is the config key for the time a view
	// session waits for the broker before showing the fallback dataset
	SettingBrokerConnectTimeout = "broker_connect_timeout"
	// SettingBrokerConnectTimeoutDefault is the default connect timeout
	// in seconds
	SettingBrokerConnectTimeoutDefault = 3

	// SettingStoreDriver is the config key for the alert store backend
	SettingStoreDriver = "store_driver"
	// SettingStoreDriverDefault is the default alert store backend
	SettingStoreDriverDefault = StoreDriverPostgres

	// SettingPostgresURL is the config key for the postgres connection string
	SettingPostgresURL = "postgres_url"
	// SettingPostgresURLDefault is the default postgres connection string
	SettingPostgresURLDefault = "postgres://stakeconnect@localhost:5432/stakeconnect"

	// SettingMongo is the config key for the mongo URL
	SettingMongo = "mongo_url"
	// SettingMongoDefault is the default value for the mongo URL
	SettingMongoDefault = "mongodb://localhost:27017"

	// SettingDbName is the config key for the mongo database name
	SettingDbName = "mongo_dbname"
	// SettingDbNameDefault is the default value for the mongo database name
	SettingDbNameDefault = "stakeconnect"

	// SettingDbSSL is the config key for the mongo SSL setting
	SettingDbSSL = "mongo_ssl"
	// SettingDbSSLDefault is the default value for the mongo SSL setting
	SettingDbSSLDefault = false

	// SettingDbSSLSkipVerify is the config key for the mongo SSL skip verify setting
	SettingDbSSLSkipVerify = "mongo_ssl_skipverify"
	// SettingDbSSLSkipVerifyDefault is the default value for the mongo SSL skip verify setting
	SettingDbSSLSkipVerifyDefault = false

	// SettingDbUsername is the config key for the mongo username
	SettingDbUsername = "mongo_username"

	// SettingDbPassword is the config key for the mongo password
	SettingDbPassword = "mongo_password"

	// SettingGatewayURL is the config key for the persistence gateway the
	// alert pipeline submits to
	SettingGatewayURL = "gateway_url"
	// SettingGatewayURLDefault is the default gateway url (this process)
	SettingGatewayURLDefault = "http://localhost:8080"

	// SettingGatewayHealthCheck is the config key for including the
	// persistence gateway in the health check; only enable it when
	// gateway_url points to another instance
	SettingGatewayHealthCheck = "gateway_health_check"
	// SettingGatewayHealthCheckDefault is the default gateway health check
	// setting
	SettingGatewayHealthCheckDefault = false

	// SettingAcceptedOrigins is the config key for the list of origins
	// allowed to open view streams
	SettingAcceptedOrigins = "accepted_origins"

	// SettingDebugLog is the config key for the turning on the debug log
	SettingDebugLog = "debug_log"
	// SettingDebugLogDefault is the default value for the debug log enabling
	SettingDebugLogDefault = false
)

// Supported values for SettingStoreDriver
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

var (
	// Defaults are the default configuration settings
	Defaults = []config.Default{
		{Key: SettingListen, Value: SettingListenDefault},
		{Key: SettingNatsURI, Value: SettingNatsURIDefault},
		{Key: SettingBrokerConnectTimeout, Value: SettingBrokerConnectTimeoutDefault},
		{Key: SettingStoreDriver, Value: SettingStoreDriverDefault},
		{Key: SettingPostgresURL, Value: SettingPostgresURLDefault},
		{Key: SettingMongo, Value: SettingMongoDefault},
		{Key: SettingDbName, Value: SettingDbNameDefault},
		{Key: SettingDbSSL, Value: SettingDbSSLDefault},
		{Key: SettingDbSSLSkipVerify, Value: SettingDbSSLSkipVerifyDefault},
		{Key: SettingGatewayURL, Value: SettingGatewayURLDefault},
		{Key: SettingGatewayHealthCheck, Value: SettingGatewayHealthCheckDefault},
		{Key: SettingDebugLog, Value: SettingDebugLogDefault},
	}
)
