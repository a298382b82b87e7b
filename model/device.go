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
	"math"
	"strings"
)

// Status is the health reported by a stake
type Status string

// Values for the device status attribute
const (
	StatusGood    Status = "GOOD"
	StatusBad     Status = "BAD"
	StatusOff     Status = "OFF"
	StatusUnknown Status = "UNKNOWN"
)

// Indicator colors of the status display
const (
	ColorGreen = "green"
	ColorRed   = "red"
	ColorGray  = "gray"
)

// StatusDisplay is the {label, indicator-color} tuple rendered for a status
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusDisplays = map[Status]StatusDisplay{
	StatusGood:    {Label: "Good", Color: ColorGreen},
	StatusBad:     {Label: "Bad", Color: ColorRed},
	StatusOff:     {Label: "Off", Color: ColorGray},
	StatusUnknown: {Label: "Unknown", Color: ColorGray},
}

// ParseStatus maps a status code or display label, case insensitive, to a
// Status. Unrecognised values map to StatusUnknown.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	for status, display := range statusDisplays {
		if strings.EqualFold(s, string(status)) ||
			strings.EqualFold(s, display.Label) {
			return status
		}
	}
	return StatusUnknown
}

// Display returns the display tuple of the status
func (s Status) Display() StatusDisplay {
	if d, ok := statusDisplays[s]; ok {
		return d
	}
	return statusDisplays[StatusUnknown]
}

// Position is the geographic position of a stake
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NoPosition is the position of a device which did not report coordinates
var NoPosition = Position{Lat: math.NaN(), Lng: math.NaN()}

// Valid tells if both coordinates are finite numbers
func (p Position) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Detection is the most recent detection event of a stake
type Detection struct {
	Time   string `json:"time"`
	Target string `json:"target"`
	// Image is either inline base64 image data or a URL
	Image string `json:"image"`
}

// Device is the last known state of a stake
type Device struct {
	ID          int64
	Battery     string
	Temperature string
	Humidity    string
	Status      Status
	Position    Position
	Recent      *Detection
}
