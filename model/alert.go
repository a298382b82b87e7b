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
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RecentAlertsLimit is the maximum number of alerts returned per device
const RecentAlertsLimit = 10

// AlertRecord is a persisted detection alert. Records are never updated.
type AlertRecord struct {
	DeviceID int64 `json:"device_id" bson:"device_id"`
	// EventTime is the ISO-8601 time stamp as sent by the device
	EventTime      string `json:"event_time" bson:"event_time"`
	DetectedObject string `json:"detected_object" bson:"detected_object"`
	Image          string `json:"base64_image" bson:"base64_image"`
}

// SaveAlertRequest is the body of the save alert API call
type SaveAlertRequest struct {
	ID *int64 `json:"id"`
	// RecentObj is the ordered [event time, detected object, image] tuple
	RecentObj []string `json:"recent_obj"`
}

// NewSaveAlertRequest builds the request body persisting the record
func NewSaveAlertRequest(rec *AlertRecord) *SaveAlertRequest {
	id := rec.DeviceID
	return &SaveAlertRequest{
		ID:        &id,
		RecentObj: []string{rec.EventTime, rec.DetectedObject, rec.Image},
	}
}

// Validate validates the request
func (r SaveAlertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.NotNil),
		validation.Field(&r.RecentObj,
			validation.Required,
			validation.Length(3, 0).Error("must contain the event time, "+
				"the detected object and the image")),
	)
}

// Record returns the alert record carried by a valid request
func (r SaveAlertRequest) Record() *AlertRecord {
	return &AlertRecord{
		DeviceID:       *r.ID,
		EventTime:      r.RecentObj[0],
		DetectedObject: r.RecentObj[1],
		Image:          r.RecentObj[2],
	}
}
