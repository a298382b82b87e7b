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

package registry

import (
	"github.com/smartstake/stakeconnect/model"
)

// Fallback returns the built-in dataset shown when the broker cannot be
// reached in time. Every call returns a fresh copy.
func Fallback() map[int64]model.Device {
	return map[int64]model.Device{
		1: {
			ID:          1,
			Battery:     "87",
			Temperature: "21.5",
			Humidity:    "48",
			Status:      model.StatusGood,
			Position:    model.Position{Lat: 36.3504, Lng: 127.3845},
		},
		2: {
			ID:          2,
			Battery:     "64",
			Temperature: "22.1",
			Humidity:    "51",
			Status:      model.StatusGood,
			Position:    model.Position{Lat: 36.3521, Lng: 127.3879},
			Recent: &model.Detection{
				Time:   "2025-05-01T23:21:52",
				Target: "hog",
				Image:  "/static/fallback/hog.jpg",
			},
		},
		3: {
			ID:          3,
			Battery:     "12",
			Temperature: "19.8",
			Humidity:    "55",
			Status:      model.StatusBad,
			Position:    model.Position{Lat: 36.3489, Lng: 127.3811},
		},
		4: {
			ID:       4,
			Battery:  "0",
			Status:   model.StatusOff,
			Position: model.Position{Lat: 36.3476, Lng: 127.3902},
		},
	}
}
