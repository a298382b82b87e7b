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
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/app"
	"github.com/smartstake/stakeconnect/model"
)

// Query parameters
const (
	ParamDeviceID = "device_id"
)

// HTTP errors
var (
	ErrInvalidDeviceID = errors.New("device_id must be a number")
)

// AlertsController contains the alert persistence end-points
type AlertsController struct {
	app app.App
}

// NewAlertsController returns a new AlertsController
func NewAlertsController(app app.App) *AlertsController {
	return &AlertsController{app: app}
}

// SaveAlert responds to POST /api/save-alert
func (h AlertsController) SaveAlert(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	req := &model.SaveAlertRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": errors.Wrap(err, "invalid payload").Error(),
		})
		return
	}

	err := h.app.SaveAlert(ctx, req)
	if _, ok := errors.Cause(err).(validation.Errors); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": err.Error(),
		})
		return
	} else if err != nil {
		l.Error(errors.Wrap(err, "failed to save alert"))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save alert",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "alert saved",
	})
}

// parseDeviceID accepts any finite number with an integral value
func parseDeviceID(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		math.Abs(f) >= 1<<63 {
		return 0, ErrInvalidDeviceID
	}
	return int64(f), nil
}

// GetRecentAlerts responds to GET /api/alerts/recent
func (h AlertsController) GetRecentAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	deviceID, err := parseDeviceID(c.Query(ParamDeviceID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	alerts, err := h.app.GetRecentAlerts(ctx, deviceID)
	if err != nil {
		l.Error(errors.Wrap(err, "failed to get recent alerts"))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get recent alerts",
		})
		return
	}
	if alerts == nil {
		alerts = []model.AlertRecord{}
	}

	c.JSON(http.StatusOK, alerts)
}
