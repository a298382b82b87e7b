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
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Broker subjects. The stakes publish over MQTT and the NATS MQTT bridge
// maps the topic separator "/" to "." and the "#" wildcard to ">".
const (
	SubjectResponsePrefix = "Response."
	SubjectResponseAll    = SubjectResponsePrefix + ">"
	SubjectNotify         = "Notify"
	SubjectGetDevice      = "GET.device"
	subjectControlPrefix  = "CONTROL.device"
)

// TimestampFormat is the HH:MM:SS format of the outbound time stamps
const TimestampFormat = "15:04:05"

// GetControlSubject returns the subject the stake listens for control
// commands on
func GetControlSubject(deviceID int64) string {
	return strings.Join([]string{
		subjectControlPrefix,
		strconv.FormatInt(deviceID, 10),
	}, ".")
}

// DeviceRequest asks the stakes for a full device table
type DeviceRequest struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// Pan directions of the control command
const (
	PanLeft  = "left"
	PanRight = "right"
	PanStop  = "stop"
)

// ControlCommand is a pan/tilt command for a stake camera
type ControlCommand struct {
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	// Commend is spelled the way the stake firmware expects it
	Commend string `json:"commend"`
	ID      int64  `json:"id"`
}

// Validate validates the control command
func (c ControlCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Commend, validation.Required,
			validation.In(PanLeft, PanRight, PanStop)),
	)
}
