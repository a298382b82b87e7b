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

// Marks exposes the view state decorating the projected items
type Marks interface {
	IsAlerted(id int64) bool
	IsSelected(id int64) bool
}

type noMarks struct{}

func (noMarks) IsAlerted(int64) bool  { return false }
func (noMarks) IsSelected(int64) bool { return false }

// MapItem is a marker of the map view
type MapItem struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Position    model.Position      `json:"position"`
	Status      model.StatusDisplay `json:"status"`
	Battery     string              `json:"battery"`
	Temperature string              `json:"temp"`
	Humidity    string              `json:"humi"`
	Recent      *model.Detection    `json:"recent,omitempty"`
	Alerted     bool                `json:"alerted"`
	Selected    bool                `json:"selected"`
}

// ListItem is a row of the device list view
type ListItem struct {
	model.UserDevice
	Known   bool `json:"known"`
	Alerted bool `json:"alerted"`
}

// MapItems projects the devices that are both known to the registry and
// picked in the user list, in user list order. Devices without finite
// coordinates are left out of the map.
func (r *Registry) MapItems(list *model.UserList, marks Marks) []MapItem {
	if marks == nil {
		marks = noMarks{}
	}
	items := []MapItem{}
	if list == nil {
		return items
	}
	for _, entry := range list.Devices() {
		dev, ok := r.devices[entry.ID]
		if !ok || !dev.Position.Valid() {
			continue
		}
		items = append(items, MapItem{
			ID:          dev.ID,
			Name:        entry.Name,
			Position:    dev.Position,
			Status:      dev.Status.Display(),
			Battery:     dev.Battery,
			Temperature: dev.Temperature,
			Humidity:    dev.Humidity,
			Recent:      copyDetection(dev.Recent),
			Alerted:     marks.IsAlerted(dev.ID),
			Selected:    marks.IsSelected(dev.ID),
		})
	}
	return items
}

// ListItems returns the user list entries decorated with the status and
// battery last reported for each device.
func (r *Registry) ListItems(list *model.UserList, marks Marks) []ListItem {
	if marks == nil {
		marks = noMarks{}
	}
	items := []ListItem{}
	if list == nil {
		return items
	}
	for _, entry := range list.Devices() {
		item := ListItem{UserDevice: entry, Alerted: marks.IsAlerted(entry.ID)}
		if dev, ok := r.devices[entry.ID]; ok {
			item.Known = true
			item.SetStatus(dev.Status, dev.Battery)
		}
		items = append(items, item)
	}
	return items
}
