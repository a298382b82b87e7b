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
	"encoding/json"

	natsio "github.com/nats-io/nats.go"

	"github.com/smartstake/stakeconnect/model"
)

func (s *Session) handleMessage(ctx context.Context, msg *natsio.Msg) {
	switch m := model.ParseMessage(msg.Subject, msg.Data).(type) {
	case *model.Snapshot:
		s.liveData = true
		s.registry.ApplySnapshot(m.Devices)
		if s.kind == KindList {
			s.seedRegistry()
		}
		s.emitDevices(ctx)

	case *model.NewDevice:
		s.handleNewDevice(ctx, m.Device)

	case *model.StatusUpdate:
		if !s.registry.ApplyStatus(m.ID, m.Status, m.Battery) {
			s.log.Debugf("status update for unknown device %d", m.ID)
			return
		}
		s.liveData = true
		if s.kind == KindList {
			s.mirrorStatus(ctx, m.ID)
		}
		s.emitDevices(ctx)

	case *model.AlertNotification:
		s.liveData = true
		if s.kind == KindList && !s.registry.Contains(m.ID) {
			s.announce(ctx, model.Device{
				ID:       m.ID,
				Status:   model.StatusUnknown,
				Position: model.NoPosition,
			})
		}
		s.reconcileAlert(ctx, m)

	case *model.Malformed:
		s.log.Warnf("dropping malformed message on %s: %s",
			m.Subject, m.Err.Error())
	}
}

func (s *Session) handleNewDevice(ctx context.Context, dev model.Device) {
	if s.registry.Contains(dev.ID) {
		return
	}
	if s.kind == KindMap {
		// the map learns about devices from the full table
		if s.conn != nil && s.state == StateConnected {
			s.requestDevices()
		}
		return
	}
	s.announce(ctx, dev)
}

// announce raises a candidate prompt once per pending device
func (s *Session) announce(ctx context.Context, dev model.Device) {
	if !s.view.AddCandidate(dev) {
		return
	}
	entry := model.NewUserDevice(dev)
	s.emit(ctx, Event{Type: EventCandidate, Payload: CandidatePayload{
		ID:     dev.ID,
		Name:   entry.Name,
		Status: dev.Status.Display(),
	}})
}

func (s *Session) mirrorStatus(ctx context.Context, id int64) {
	entry, ok := s.list.Get(id)
	if !ok {
		return
	}
	dev, _ := s.registry.Get(id)
	entry.SetStatus(dev.Status, dev.Battery)
	s.list.Update(entry)
	s.emitUserList(ctx)
}

func (s *Session) handleCommand(ctx context.Context, cmd Command) {
	var id int64
	if cmd.ID != nil {
		id = *cmd.ID
	}
	switch cmd.Type {
	case CommandUserList:
		previous := s.list.IDs()
		s.list = model.NewUserList(cmd.Devices)
		listed := s.list.IDs()
		for id := range previous {
			if _, ok := listed[id]; !ok {
				s.view.Forget(id)
			}
		}
		if s.kind == KindList {
			s.syncRegistry()
		}
		s.emitDevices(ctx)

	case CommandSelect:
		s.view.Select(id)
		s.emitDevices(ctx)

	case CommandDeselect:
		s.view.Deselect()
		s.emitDevices(ctx)

	case CommandPan:
		s.pan(cmd.Direction)

	case CommandAcceptDevice:
		dev, ok := s.view.TakeCandidate(id)
		if !ok {
			s.log.Debugf("no pending device %d to accept", id)
			return
		}
		s.registry.Add(dev)
		s.list.Add(model.NewUserDevice(dev))
		s.emitUserList(ctx)
		s.emitDevices(ctx)

	case CommandDeclineDevice:
		if !s.view.IsCandidate(id) {
			s.log.Debugf("no pending device %d to decline", id)
			return
		}
		s.view.TakeCandidate(id)

	case CommandRemoveDevice:
		if !s.list.Remove(id) {
			return
		}
		if s.kind == KindList {
			s.registry.Remove(id)
		}
		s.view.Forget(id)
		s.emitUserList(ctx)
		s.emitDevices(ctx)

	case CommandReorder:
		s.list.Reorder(cmd.Order)
		s.emitUserList(ctx)
		s.emitDevices(ctx)

	case CommandHistory:
		s.requestHistory(id)
	}
}

// pan publishes a camera control command for the selected device. It is
// a no-op unless the broker is connected and a device is selected.
func (s *Session) pan(direction string) {
	id, ok := s.view.Selected()
	if !ok || s.conn == nil || s.state != StateConnected {
		s.log.Debugf("ignoring pan %s: not connected or no device selected",
			direction)
		return
	}
	cmd := model.ControlCommand{
		User:      s.clientID,
		Timestamp: s.timestamp(),
		Commend:   direction,
		ID:        id,
	}
	if err := cmd.Validate(); err != nil {
		s.log.Warnf("invalid control command: %s", err.Error())
		return
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		s.log.Errorf("failed to encode control command: %s", err.Error())
		return
	}
	if err := s.conn.Publish(model.GetControlSubject(id), data); err != nil {
		s.log.Errorf("failed to publish control command: %s", err.Error())
	}
}
