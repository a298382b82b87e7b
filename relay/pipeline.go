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

package relay

import (
	"context"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/model"
)

// ErrNoGateway is returned when the session has no persistence gateway
var ErrNoGateway = errors.New("no persistence gateway configured")

// reconcileAlert runs the alert pipeline. The steps do not depend on each
// other: the device is marked and the notification raised whatever the
// outcome of the registry update and the persistence call.
func (s *Session) reconcileAlert(ctx context.Context, alert *model.AlertNotification) {
	det := alert.Detection
	if !s.registry.ApplyAlert(alert.ID, det) {
		s.log.Debugf("alert for unknown device %d", alert.ID)
	}
	s.view.MarkAlerted(alert.ID)

	_ = s.saveAlert(&model.AlertRecord{
		DeviceID:       alert.ID,
		EventTime:      det.Time,
		DetectedObject: det.Target,
		Image:          det.Image,
	})

	s.emit(ctx, Event{Type: EventNotification, Payload: Notification{
		ID:        alert.ID,
		Target:    det.Target,
		TimeOfDay: TimeOfDay(det.Time),
	}})
	s.emitDevices(ctx)
}

// saveAlert submits the alert to the gateway in the background. The
// returned channel yields the outcome and may be ignored; failures are
// logged and not retried.
func (s *Session) saveAlert(rec *model.AlertRecord) <-chan error {
	errChan := make(chan error, 1)
	if s.conf.Gateway == nil {
		errChan <- ErrNoGateway
		close(errChan)
		return errChan
	}
	l := s.log
	go func() {
		defer close(errChan)
		// not tied to the session: the save completes after the view is gone
		ctx := log.WithContext(context.Background(), l)
		err := s.conf.Gateway.SaveAlert(ctx, rec)
		if err != nil {
			l.Errorf("failed to persist the alert of device %d: %s",
				rec.DeviceID, err.Error())
		}
		errChan <- err
	}()
	return errChan
}

// requestHistory fetches the recent alerts of the device in the background
// and emits them from the session go-routine. Results arriving after the
// session ended are dropped.
func (s *Session) requestHistory(id int64) {
	if s.conf.Gateway == nil {
		s.deliver(func(ctx context.Context) {
			s.emit(ctx, Event{Type: EventHistory, Payload: HistoryPayload{
				ID:     id,
				Alerts: []model.AlertRecord{},
				Error:  ErrNoGateway.Error(),
			}})
		})
		return
	}
	l := s.log
	go func() {
		ctx := log.WithContext(context.Background(), l)
		alerts, err := s.conf.Gateway.GetRecentAlerts(ctx, id)
		payload := HistoryPayload{ID: id, Alerts: alerts}
		if err != nil {
			l.Errorf("failed to get the recent alerts of device %d: %s",
				id, err.Error())
			payload.Alerts = []model.AlertRecord{}
			payload.Error = err.Error()
		}
		s.deliver(func(ctx context.Context) {
			s.emit(ctx, Event{Type: EventHistory, Payload: payload})
		})
	}()
}

// deliver hands fn to the session go-routine unless the session ended
func (s *Session) deliver(fn func(ctx context.Context)) {
	go func() {
		select {
		case s.calls <- fn:
		case <-s.done:
		}
	}()
}
