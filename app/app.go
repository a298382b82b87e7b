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

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/model"
	"github.com/smartstake/stakeconnect/store"
)

// App errors
var (
	ErrNilRequest = errors.New("app: nil save alert request")
)

// App interface describes app objects
//
//go:generate ../utils/mockgen.sh
type App interface {
	HealthCheck(ctx context.Context) error
	SaveAlert(ctx context.Context, req *model.SaveAlertRequest) error
	GetRecentAlerts(ctx context.Context, deviceID int64) ([]model.AlertRecord, error)
	Shutdown(timeout time.Duration)
	ShutdownDone()
	RegisterShutdownCancel(context.CancelFunc) uint32
	UnregisterShutdownCancel(uint32)
}

// app is an app object
type app struct {
	store            store.DataStore
	shutdownCancels  map[uint32]context.CancelFunc
	shutdownCancelsM *sync.Mutex
	shutdownDone     chan struct{}
}

// New initializes a new stakeconnect App
func New(ds store.DataStore) App {
	return &app{
		store:            ds,
		shutdownCancels:  make(map[uint32]context.CancelFunc),
		shutdownCancelsM: &sync.Mutex{},
		shutdownDone:     make(chan struct{}),
	}
}

// HealthCheck performs a health check and returns an error if it fails
func (a *app) HealthCheck(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// SaveAlert validates the request and appends the alert it carries.
// An invalid request is never stored; errors.Cause of the returned error is
// then the validation.Errors.
func (a *app) SaveAlert(ctx context.Context, req *model.SaveAlertRequest) error {
	if req == nil {
		return ErrNilRequest
	}
	if err := req.Validate(); err != nil {
		return errors.WithMessage(err, "app: invalid alert")
	}
	alert := req.Record()
	if err := a.store.InsertAlert(ctx, alert); err != nil {
		log.FromContext(ctx).
			Errorf("failed to save alert of device %d: %s", alert.DeviceID, err.Error())
		return err
	}
	return nil
}

// GetRecentAlerts returns the newest alerts of the device
func (a *app) GetRecentAlerts(
	ctx context.Context,
	deviceID int64,
) ([]model.AlertRecord, error) {
	return a.store.GetRecentAlerts(ctx, deviceID, model.RecentAlertsLimit)
}

func (a *app) Shutdown(timeout time.Duration) {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	ticker := time.NewTicker(timeout / time.Duration(len(a.shutdownCancels)+1))
	defer ticker.Stop()
	for _, cancel := range a.shutdownCancels {
		cancel()
		<-ticker.C
	}
	<-ticker.C
	close(a.shutdownDone)
}

func (a *app) ShutdownDone() {
	<-a.shutdownDone
}

var shutdownID uint32

// RegisterShutdownCancel registers the cancel function of a long lived
// request (a view stream) to be called on shutdown
func (a *app) RegisterShutdownCancel(cancel context.CancelFunc) uint32 {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	id := atomic.AddUint32(&shutdownID, 1)
	a.shutdownCancels[id] = cancel
	return id
}

func (a *app) UnregisterShutdownCancel(id uint32) {
	a.shutdownCancelsM.Lock()
	defer a.shutdownCancelsM.Unlock()
	delete(a.shutdownCancels, id)
}
