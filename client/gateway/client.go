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

// Package gateway is the HTTP client of the alert persistence gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/requestid"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/model"
)

const (
	HealthCheckURI  = "/api/internal/v1/stakeconnect/health"
	SaveAlertURI    = "/api/save-alert"
	RecentAlertsURI = "/api/alerts/recent"
)

const (
	defaultTimeout = time.Duration(5) * time.Second
)

// ErrRejected is returned when the gateway refuses the request as invalid
var ErrRejected = errors.New("request rejected")

// Client is the gateway client
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	SaveAlert(ctx context.Context, alert *model.AlertRecord) error
	GetRecentAlerts(ctx context.Context, deviceID int64) ([]model.AlertRecord, error)
}

type ClientOptions struct {
	Client *http.Client
}

// NewClient returns a new gateway client
func NewClient(url string, opts ...ClientOptions) Client {
	// Initialize default options
	var clientOpts = ClientOptions{
		Client: &http.Client{},
	}
	// Merge options
	for _, opt := range opts {
		if opt.Client != nil {
			clientOpts.Client = opt.Client
		}
	}

	return &client{
		url:    strings.TrimSuffix(url, "/"),
		client: *clientOpts.Client,
	}
}

type client struct {
	url    string
	client http.Client
}

type apiError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (e apiError) String() string {
	if e.Err != "" {
		return e.Err
	}
	return e.Message
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, defaultTimeout)
	}
	return ctx, func() {}
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	if reqID := requestid.FromContext(req.Context()); reqID != "" {
		req.Header.Set(requestid.RequestIdHeader, reqID)
	}
	return c.client.Do(req)
}

// checkStatus maps non-2xx responses to errors; 4xx responses are
// ErrRejected so callers may tell them apart, but the views never do.
func checkStatus(rsp *http.Response, op string) error {
	if rsp.StatusCode >= http.StatusOK && rsp.StatusCode < 300 {
		return nil
	}
	var apiErr apiError
	_ = json.NewDecoder(rsp.Body).Decode(&apiErr)
	if rsp.StatusCode >= 400 && rsp.StatusCode < 500 {
		if msg := apiErr.String(); msg != "" {
			return errors.Wrapf(ErrRejected, "gateway: %s: %s", op, msg)
		}
		return errors.Wrapf(ErrRejected, "gateway: %s: %s", op, rsp.Status)
	}
	return errors.Errorf(
		"gateway: %s: unexpected HTTP status from gateway: %s",
		op, rsp.Status,
	)
}

func (c *client) CheckHealth(ctx context.Context) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	req, _ := http.NewRequestWithContext(
		ctx, "GET", c.url+HealthCheckURI, nil,
	)

	rsp, err := c.do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	return checkStatus(rsp, "health check")
}

func (c *client) SaveAlert(ctx context.Context, alert *model.AlertRecord) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	if alert == nil {
		return errors.New("gateway: nil alert")
	}
	payload, err := json.Marshal(model.NewSaveAlertRequest(alert))
	if err != nil {
		return errors.Wrap(err, "gateway: failed to encode alert")
	}
	req, err := http.NewRequestWithContext(ctx,
		"POST",
		c.url+SaveAlertURI,
		bytes.NewReader(payload),
	)
	if err != nil {
		return errors.Wrap(err, "gateway: error preparing HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.do(req)
	if err != nil {
		return errors.Wrap(err, "gateway: failed to save alert")
	}
	defer rsp.Body.Close()
	return checkStatus(rsp, "save alert")
}

func (c *client) GetRecentAlerts(
	ctx context.Context,
	deviceID int64,
) ([]model.AlertRecord, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()
	q := url.Values{}
	q.Set("device_id", strconv.FormatInt(deviceID, 10))
	req, err := http.NewRequestWithContext(ctx,
		"GET",
		c.url+RecentAlertsURI+"?"+q.Encode(),
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "gateway: error preparing HTTP request")
	}

	rsp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "gateway: failed to get recent alerts")
	}
	defer rsp.Body.Close()
	if err := checkStatus(rsp, "recent alerts"); err != nil {
		return nil, err
	}

	alerts := []model.AlertRecord{}
	if err := json.NewDecoder(rsp.Body).Decode(&alerts); err != nil {
		return nil, errors.Wrap(err, "gateway: error parsing recent alerts response")
	}
	return alerts, nil
}
