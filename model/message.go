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

package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Values of the cmd field of the Notify messages
const (
	CmdNewDevice    = "new_device"
	CmdStatusUpdate = "status_update"
	CmdAlert        = "alert"
)

// Parsing errors
var (
	ErrMissingID        = errors.New("missing device id")
	ErrInvalidID        = errors.New("device id is not an integer")
	ErrMissingStatus    = errors.New("missing status")
	ErrInvalidDetection = errors.New("recent_obj must hold time, object and image")
	ErrUnknownCommand   = errors.New("unknown cmd")
	ErrUnknownSubject   = errors.New("unexpected subject")
)

// Message is a broker message parsed at the boundary. It is one of
// *Snapshot, *NewDevice, *StatusUpdate, *AlertNotification or *Malformed.
type Message interface {
	isMessage()
}

// Snapshot is a full device table; it replaces the registry
type Snapshot struct {
	Devices map[int64]Device
}

// NewDevice announces a stake
type NewDevice struct {
	Device Device
}

// StatusUpdate carries the status and battery of a single stake
type StatusUpdate struct {
	ID      int64
	Status  Status
	Battery *string
}

// AlertNotification carries a live detection of a single stake
type AlertNotification struct {
	ID        int64
	Detection Detection
}

// Malformed is a message which could not be parsed
type Malformed struct {
	Subject string
	Err     error
}

func (*Snapshot) isMessage()          {}
func (*NewDevice) isMessage()         {}
func (*StatusUpdate) isMessage()      {}
func (*AlertNotification) isMessage() {}
func (*Malformed) isMessage()         {}

// FlexString decodes either a JSON string or a JSON number into its text
// form; the stakes are not consistent about it.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return errors.Errorf("expected string or number, got %s", string(b))
	}
	*s = FlexString(num.String())
	return nil
}

// RawDevice is a device entry of the full table response
type RawDevice struct {
	Battery   FlexString   `json:"battery"`
	Temp      FlexString   `json:"temp"`
	Humi      FlexString   `json:"humi"`
	Status    FlexString   `json:"status"`
	Lat       *FlexString  `json:"lat"`
	Lng       *FlexString  `json:"lng"`
	RecentObj []FlexString `json:"recent_obj,omitempty"`
}

// Device converts the raw entry into a Device
func (raw RawDevice) Device(id int64) Device {
	dev := Device{
		ID:          id,
		Battery:     string(raw.Battery),
		Temperature: string(raw.Temp),
		Humidity:    string(raw.Humi),
		Status:      ParseStatus(string(raw.Status)),
		Position: Position{
			Lat: parseCoordinate(raw.Lat),
			Lng: parseCoordinate(raw.Lng),
		},
	}
	if det, err := ParseDetection(raw.RecentObj); err == nil {
		dev.Recent = det
	}
	return dev
}

func parseCoordinate(s *FlexString) float64 {
	if s == nil {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(*s)), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseDetection converts the [time, object, image] tuple into a Detection
func ParseDetection(tuple []FlexString) (*Detection, error) {
	if len(tuple) < 3 {
		return nil, ErrInvalidDetection
	}
	return &Detection{
		Time:   string(tuple[0]),
		Target: string(tuple[1]),
		Image:  string(tuple[2]),
	}, nil
}

// ParseDeviceID parses a device id sent as JSON number or numeric string
func ParseDeviceID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrMissingID
	}
	var s FlexString
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.Wrap(ErrInvalidID, err.Error())
	}
	return parseIntegral(string(s))
}

func parseIntegral(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrInvalidID
	} else if math.Abs(f) >= 1<<63 {
		// out of the int64 range
		return 0, ErrInvalidID
	}
	return int64(f), nil
}

type rawNotification struct {
	Cmd       string          `json:"cmd"`
	ID        json.RawMessage `json:"id"`
	Idx       json.RawMessage `json:"idx"`
	Status    *FlexString     `json:"status"`
	Battery   *FlexString     `json:"battery"`
	RecentObj []FlexString    `json:"recent_obj"`
}

func (n rawNotification) deviceID() (int64, error) {
	if len(bytes.TrimSpace(n.ID)) > 0 {
		return ParseDeviceID(n.ID)
	}
	return ParseDeviceID(n.Idx)
}

// ParseMessage parses a payload received on subject into a Message.
// It never returns nil; unusable payloads are returned as *Malformed.
func ParseMessage(subject string, data []byte) Message {
	switch {
	case strings.HasPrefix(subject, SubjectResponsePrefix):
		return parseSnapshot(subject, data)
	case subject == SubjectNotify:
		return parseNotification(subject, data)
	}
	return &Malformed{Subject: subject, Err: ErrUnknownSubject}
}

func parseSnapshot(subject string, data []byte) Message {
	table := map[string]RawDevice{}
	if err := json.Unmarshal(data, &table); err != nil {
		return &Malformed{
			Subject: subject,
			Err:     errors.Wrap(err, "invalid device table"),
		}
	}
	devices := make(map[int64]Device, len(table))
	for key, raw := range table {
		id, err := parseIntegral(key)
		if err != nil {
			continue
		}
		devices[id] = raw.Device(id)
	}
	return &Snapshot{Devices: devices}
}

func parseNotification(subject string, data []byte) Message {
	var n rawNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return &Malformed{
			Subject: subject,
			Err:     errors.Wrap(err, "invalid notification"),
		}
	}
	id, err := n.deviceID()
	if err != nil {
		return &Malformed{Subject: subject, Err: err}
	}
	var battery *string
	if n.Battery != nil {
		b := string(*n.Battery)
		battery = &b
	}

	switch n.Cmd {
	case CmdNewDevice:
		dev := Device{ID: id, Status: StatusUnknown, Position: NoPosition}
		if n.Status != nil {
			dev.Status = ParseStatus(string(*n.Status))
		}
		if battery != nil {
			dev.Battery = *battery
		}
		return &NewDevice{Device: dev}

	case CmdStatusUpdate:
		if n.Status == nil {
			return &Malformed{Subject: subject, Err: ErrMissingStatus}
		}
		return &StatusUpdate{
			ID:      id,
			Status:  ParseStatus(string(*n.Status)),
			Battery: battery,
		}

	case CmdAlert:
		det, err := ParseDetection(n.RecentObj)
		if err != nil {
			return &Malformed{Subject: subject, Err: err}
		}
		return &AlertNotification{ID: id, Detection: *det}
	}
	return &Malformed{
		Subject: subject,
		Err:     errors.Wrapf(ErrUnknownCommand, "%q", n.Cmd),
	}
}
