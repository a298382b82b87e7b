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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	api "github.com/smartstake/stakeconnect/api/http"
	dconfig "github.com/smartstake/stakeconnect/config"
	"github.com/smartstake/stakeconnect/server"
	"github.com/smartstake/stakeconnect/store"
	"github.com/smartstake/stakeconnect/store/mongo"
	"github.com/smartstake/stakeconnect/store/postgres"
)

var Version string = "unknown"

// ErrUnknownStoreDriver is returned for an unsupported store_driver setting
var ErrUnknownStoreDriver = errors.New("unknown store driver")

func main() {
	doMain(os.Args)
}

func doMain(args []string) {
	var configPath string
	var envFile string

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "config",
				Usage: "Configuration `FILE`. " +
					"Supports JSON, TOML, YAML and HCL " +
					"formatted configs.",
				Value:       "config.yaml",
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name: "env-file",
				Usage: "Optional dotenv `FILE` exported to the environment " +
					"before the configuration is read.",
				Destination: &envFile,
			},
		},
		Commands: []cli.Command{
			{
				Name:   "server",
				Usage:  "Run the HTTP API server",
				Action: cmdServer,
			},
		},
	}
	app.Usage = "Smart stake relay and alert gateway"
	app.Version = Version
	app.Action = cmdServer

	app.Before = func(args *cli.Context) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return cli.NewExitError(
					fmt.Sprintf("error loading env file: %s", err),
					1)
			}
		}

		err := config.FromConfigFile(configPath, dconfig.Defaults)
		if err != nil {
			return cli.NewExitError(
				fmt.Sprintf("error loading configuration: %s", err),
				1)
		}

		// Enable setting config values by environment variables
		config.Config.SetEnvPrefix("STAKECONNECT")
		config.Config.AutomaticEnv()
		config.Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

		return nil
	}

	err := app.Run(args)
	if err != nil {
		log.Fatal(err)
	}
}

func setupDataStore(ctx context.Context, driver string) (store.DataStore, error) {
	switch driver {
	case dconfig.StoreDriverPostgres:
		return postgres.SetupDataStore(ctx)
	case dconfig.StoreDriverMongo:
		return mongo.SetupDataStore(ctx)
	default:
		return nil, errors.Wrapf(ErrUnknownStoreDriver, "%q", driver)
	}
}

func cmdServer(args *cli.Context) error {
	dataStore, err := setupDataStore(context.Background(),
		config.Config.GetString(dconfig.SettingStoreDriver))
	if err != nil {
		return err
	}
	defer dataStore.Close()

	api.SetAcceptedOrigins(config.Config.GetStringSlice(dconfig.SettingAcceptedOrigins))
	return server.InitAndRun(config.Config, dataStore)
}
