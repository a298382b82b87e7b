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

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"golang.org/x/sys/unix"

	api "github.com/smartstake/stakeconnect/api/http"
	"github.com/smartstake/stakeconnect/app"
	"github.com/smartstake/stakeconnect/client/gateway"
	dconfig "github.com/smartstake/stakeconnect/config"
	"github.com/smartstake/stakeconnect/relay"
	"github.com/smartstake/stakeconnect/store"
)

const shutdownTimeout = 5 * time.Second

// RelayConfig returns the configuration of the view stream sessions
func RelayConfig(conf config.Reader) relay.Config {
	return relay.Config{
		NatsURI: conf.GetString(dconfig.SettingNatsURI),
		ConnectTimeout: time.Duration(
			conf.GetInt(dconfig.SettingBrokerConnectTimeout)) * time.Second,
		Gateway: gateway.NewClient(conf.GetString(dconfig.SettingGatewayURL)),
	}
}

// InitAndRun initializes the server and runs it
func InitAndRun(conf config.Reader, dataStore store.DataStore) error {
	ctx := context.Background()

	log.Setup(conf.GetBool(dconfig.SettingDebugLog))
	l := log.FromContext(ctx)

	stakeConnectApp := app.New(dataStore)

	relayConfig := RelayConfig(conf)
	var dependencies []api.HealthChecker
	if conf.GetBool(dconfig.SettingGatewayHealthCheck) {
		dependencies = append(dependencies, relayConfig.Gateway)
	}

	var listen = conf.GetString(dconfig.SettingListen)
	router, err := api.NewRouter(stakeConnectApp, relayConfig, dependencies...)
	if err != nil {
		l.Fatal(err)
	}
	srv := &http.Server{
		Addr:    listen,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)
	<-quit

	l.Info("Shutdown Server ...")

	// view streams are hijacked connections the http server does not track
	go stakeConnectApp.Shutdown(shutdownTimeout)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxWithTimeout); err != nil {
		l.Fatal("Server Shutdown: ", err)
	}
	stakeConnectApp.ShutdownDone()

	return nil
}
