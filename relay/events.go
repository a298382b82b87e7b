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
	"strings"
	"time"

	"github.com/smartstake/stakeconnect/model"
)

// Event types sent to the view
const (
	EventState        = "state"
	EventDevices      = "devices"
	EventCandidate    = "candidate"
	EventUserList     = "user_list"
	EventNotification = "notification"
	EventHistory      = "history"
)

// Event is a message from the session to the view
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StatePayload is the payload of the state event
type StatePayload struct {
	State    State  `json:"state"`
	Fallback bool   `json:"fallback"`
	ClientID string `json:"client_id"`
}

// CandidatePayload is the payload of the candidate event: a device
// announced itself and waits for the operator to accept it.
type CandidatePayload struct {
	ID     int64               `json:"id"`
	Name   string              `json:"name"`
	Status model.StatusDisplay `json:"status"`
}

// Notification is the transient alert notice shown by the view
type Notification struct {
	ID        int64  `json:"id"`
	Target    string `json:"target"`
	TimeOfDay string `json:"time_of_day"`
}

// HistoryPayload is the payload of the history event
type HistoryPayload struct {
	ID     int64               `json:"id"`
	Alerts []model.AlertRecord `json:"alerts"`
	Error  string              `json:"error,omitempty"`
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// TimeOfDay returns the HH:MM:SS part of a device event time
func TimeOfDay(eventTime string) string {
	eventTime = strings.TrimSpace(eventTime)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, eventTime); err == nil {
			return t.Format(model.TimestampFormat)
		}
	}
	if i := strings.IndexAny(eventTime, "T "); i >= 0 {
		return eventTime[i+1:]
	}
	return eventTime
}
