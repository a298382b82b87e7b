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
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string {
	return &s
}

func TestParseSnapshot(t *testing.T) {
	payload := `{
		"1": {"battery": "87", "temp": "21.5", "humi": "48", "status": "GOOD",
		      "lat": "36.35", "lng": "127.38",
		      "recent_obj": ["2025-05-01T23:21:52", "hog", "aGVsbG8="]},
		"2": {"battery": 55, "temp": 19.5, "humi": 60, "status": "bad",
		      "lat": 36.36, "lng": 127.39},
		"3": {"battery": "10", "status": "OFF"},
		"x": {"battery": "1", "status": "GOOD"},
		"1e19": {"battery": "1", "status": "GOOD"}
	}`
	msg := ParseMessage("Response.6c2e", []byte(payload))
	snap, ok := msg.(*Snapshot)
	require.True(t, ok, "expected a snapshot, got %T", msg)
	require.Len(t, snap.Devices, 3)

	dev := snap.Devices[1]
	assert.Equal(t, int64(1), dev.ID)
	assert.Equal(t, "87", dev.Battery)
	assert.Equal(t, "21.5", dev.Temperature)
	assert.Equal(t, "48", dev.Humidity)
	assert.Equal(t, StatusGood, dev.Status)
	assert.Equal(t, Position{Lat: 36.35, Lng: 127.38}, dev.Position)
	assert.Equal(t, &Detection{
		Time:   "2025-05-01T23:21:52",
		Target: "hog",
		Image:  "aGVsbG8=",
	}, dev.Recent)

	dev = snap.Devices[2]
	assert.Equal(t, "55", dev.Battery)
	assert.Equal(t, "19.5", dev.Temperature)
	assert.Equal(t, StatusBad, dev.Status)
	assert.True(t, dev.Position.Valid())
	assert.Nil(t, dev.Recent)

	dev = snap.Devices[3]
	assert.Equal(t, StatusOff, dev.Status)
	assert.False(t, dev.Position.Valid())
	assert.True(t, math.IsNaN(dev.Position.Lat))
}

func TestParseNotification(t *testing.T) {
	testCases := []struct {
		Name string

		Subject string
		Payload string

		Message Message
		Error   error
	}{{
		Name: "new device",

		Subject: SubjectNotify,
		Payload: `{"cmd": "new_device", "id": 12, "status": "GOOD", "battery": "90"}`,
		Message: &NewDevice{Device: Device{
			ID:       12,
			Status:   StatusGood,
			Battery:  "90",
			Position: NoPosition,
		}},
	}, {
		Name: "new device, idx and string id",

		Subject: SubjectNotify,
		Payload: `{"cmd": "new_device", "idx": "13"}`,
		Message: &NewDevice{Device: Device{
			ID:       13,
			Status:   StatusUnknown,
			Position: NoPosition,
		}},
	}, {
		Name: "status update",

		Subject: SubjectNotify,
		Payload: `{"cmd": "status_update", "id": 4, "status": "OFF", "battery": 0}`,
		Message: &StatusUpdate{ID: 4, Status: StatusOff, Battery: strp("0")},
	}, {
		Name: "status update without battery",

		Subject: SubjectNotify,
		Payload: `{"cmd": "status_update", "id": 4.0, "status": "Bad"}`,
		Message: &StatusUpdate{ID: 4, Status: StatusBad},
	}, {
		Name: "alert",

		Subject: SubjectNotify,
		Payload: `{"cmd": "alert", "id": 2, "recent_obj": ` +
			`["2025-05-01T23:21:52", "deer", "https://example.com/deer.jpg"]}`,
		Message: &AlertNotification{ID: 2, Detection: Detection{
			Time:   "2025-05-01T23:21:52",
			Target: "deer",
			Image:  "https://example.com/deer.jpg",
		}},
	}, {
		Name: "error, alert with short tuple",

		Subject: SubjectNotify,
		Payload: `{"cmd": "alert", "id": 2, "recent_obj": ["2025-05-01T23:21:52"]}`,
		Error:   ErrInvalidDetection,
	}, {
		Name: "error, status update without status",

		Subject: SubjectNotify,
		Payload: `{"cmd": "status_update", "id": 2}`,
		Error:   ErrMissingStatus,
	}, {
		Name: "error, missing id",

		Subject: SubjectNotify,
		Payload: `{"cmd": "status_update", "status": "GOOD"}`,
		Error:   ErrMissingID,
	}, {
		Name: "error, fractional id",

		Subject: SubjectNotify,
		Payload: `{"cmd": "status_update", "id": 2.5, "status": "GOOD"}`,
		Error:   ErrInvalidID,
	}, {
		Name: "error, id out of range",

		Subject: SubjectNotify,
		Payload: `{"cmd": "alert", "id": 1e19, "recent_obj": ` +
			`["2025-05-01T23:21:52", "deer", "aGVsbG8="]}`,
		Error: ErrInvalidID,
	}, {
		Name: "error, unknown cmd",

		Subject: SubjectNotify,
		Payload: `{"cmd": "reboot", "id": 2}`,
		Error:   ErrUnknownCommand,
	}, {
		Name: "error, not json",

		Subject: SubjectNotify,
		Payload: `{"cmd": `,
	}, {
		Name: "error, unknown subject",

		Subject: "CONTROL.device.1",
		Payload: `{}`,
		Error:   ErrUnknownSubject,
	}, {
		Name: "error, invalid table",

		Subject: "Response.abc",
		Payload: `[1, 2]`,
	}}

	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			msg := ParseMessage(tc.Subject, []byte(tc.Payload))
			if expected, ok := tc.Message.(*NewDevice); ok {
				actual, ok := msg.(*NewDevice)
				if assert.True(t, ok, "expected a new device, got %T", msg) {
					// NaN coordinates never compare equal
					assert.False(t, actual.Device.Position.Valid())
					actual.Device.Position = Position{}
					expected.Device.Position = Position{}
					assert.Equal(t, expected, actual)
				}
				return
			} else if tc.Message != nil {
				assert.Equal(t, tc.Message, msg)
				return
			}
			malformed, ok := msg.(*Malformed)
			if assert.True(t, ok, "expected malformed message, got %T", msg) {
				assert.Equal(t, tc.Subject, malformed.Subject)
				assert.Error(t, malformed.Err)
				if tc.Error != nil {
					assert.Equal(t, tc.Error, errors.Cause(malformed.Err))
				}
			}
		})
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString  `json:"a"`
		B FlexString  `json:"b"`
		C FlexString  `json:"c"`
		D *FlexString `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": "x", "b": 1.50, "c": null}`), &v)
	require.NoError(t, err)
	assert.Equal(t, FlexString("x"), v.A)
	assert.Equal(t, FlexString("1.50"), v.B)
	assert.Equal(t, FlexString(""), v.C)
	assert.Nil(t, v.D)

	err = json.Unmarshal([]byte(`{"a": true}`), &v)
	assert.Error(t, err)
}

func TestParseDeviceID(t *testing.T) {
	id, err := ParseDeviceID(json.RawMessage(`"42"`))
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = ParseDeviceID(json.RawMessage(` 7 `))
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ParseDeviceID(json.RawMessage(`null`))
	assert.Equal(t, ErrMissingID, err)

	_, err = ParseDeviceID(json.RawMessage(`{}`))
	assert.Equal(t, ErrInvalidID, errors.Cause(err))

	_, err = ParseDeviceID(json.RawMessage(`"seven"`))
	assert.Equal(t, ErrInvalidID, err)

	_, err = ParseDeviceID(json.RawMessage(`1e19`))
	assert.Equal(t, ErrInvalidID, err)

	_, err = ParseDeviceID(json.RawMessage(`"-9.3e18"`))
	assert.Equal(t, ErrInvalidID, err)

	id, err = ParseDeviceID(json.RawMessage(`-9223372036854775808`))
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), id)
}
