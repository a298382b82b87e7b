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

package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mendersoftware/go-lib-micro/accesslog"
	"github.com/mendersoftware/go-lib-micro/requestid"

	"github.com/smartstake/stakeconnect/app"
	"github.com/smartstake/stakeconnect/relay"
)

// API URL used by the HTTP router
const (
	APIURLInternal = "/api/internal/v1/stakeconnect"

	APIURLInternalAlive  = APIURLInternal + "/alive"
	APIURLInternalHealth = APIURLInternal + "/health"

	APIURLSaveAlert    = "/api/save-alert"
	APIURLRecentAlerts = "/api/alerts/recent"

	APIURLStreamList = "/api/stream/list"
	APIURLStreamMap  = "/api/stream/map"
)

// NewRouter returns the gin router; dependencies are reported by the
// health end-point
func NewRouter(
	app app.App,
	relayConfig relay.Config,
	dependencies ...HealthChecker,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(accesslog.Middleware())
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowHeaders: []string{
			"Accept",
			"Allow",
			"Content-Type",
			"Origin",
			"Accept-Encoding",
			"Access-Control-Request-Headers",
			"Header-Access-Control-Request",
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowWebSockets: true,
		MaxAge:          time.Hour * 12,
	}))

	status := NewStatusController(app, dependencies...)
	router.GET(APIURLInternalAlive, status.Alive)
	router.GET(APIURLInternalHealth, status.Health)

	alerts := NewAlertsController(app)
	router.POST(APIURLSaveAlert, alerts.SaveAlert)
	router.GET(APIURLRecentAlerts, alerts.GetRecentAlerts)

	stream := NewStreamController(app, relayConfig)
	router.GET(APIURLStreamList, stream.List)
	router.GET(APIURLStreamMap, stream.Map)

	return router, nil
}
