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

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UserDevice is an entry of the operator curated device list, in the shape
// the browser keeps it in local storage.
type UserDevice struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StatusDot string `json:"statusDot"`
	Battery   string `json:"battery"`
}

// NewUserDevice returns the list entry of an accepted device
func NewUserDevice(dev Device) UserDevice {
	d := UserDevice{
		ID:   dev.ID,
		Name: "Stake " + strconv.FormatInt(dev.ID, 10),
	}
	d.SetStatus(dev.Status, dev.Battery)
	return d
}

// SetStatus refreshes the status display and battery of the entry
func (d *UserDevice) SetStatus(status Status, battery string) {
	display := status.Display()
	d.Status = display.Label
	d.StatusDot = display.Color
	d.Battery = battery
}

// Validate validates the list entry
func (d UserDevice) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Min(int64(0))),
	)
}

// UserList is the ordered device list chosen by the operator. It is owned
// by a single view session and is not safe for concurrent use.
type UserList struct {
	devices []UserDevice
}

// NewUserList returns a list holding devices, dropping repeated ids
func NewUserList(devices []UserDevice) *UserList {
	l := &UserList{}
	for _, d := range devices {
		l.Add(d)
	}
	return l
}

// Devices returns a copy of the list entries in order
func (l *UserList) Devices() []UserDevice {
	out := make([]UserDevice, len(l.devices))
	copy(out, l.devices)
	return out
}

// Len returns the number of entries
func (l *UserList) Len() int {
	return len(l.devices)
}

func (l *UserList) index(id int64) int {
	for i, d := range l.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Contains tells if the device is in the list
func (l *UserList) Contains(id int64) bool {
	return l.index(id) >= 0
}

// Get returns the entry of the device
func (l *UserList) Get(id int64) (UserDevice, bool) {
	if i := l.index(id); i >= 0 {
		return l.devices[i], true
	}
	return UserDevice{}, false
}

// Add appends the device; it returns false if the id is already listed
func (l *UserList) Add(d UserDevice) bool {
	if l.Contains(d.ID) {
		return false
	}
	l.devices = append(l.devices, d)
	return true
}

// Update replaces the entry with the same id; it returns false if the id
// is not listed
func (l *UserList) Update(d UserDevice) bool {
	i := l.index(d.ID)
	if i < 0 {
		return false
	}
	l.devices[i] = d
	return true
}

// Remove deletes the device from the list
func (l *UserList) Remove(id int64) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.devices = append(l.devices[:i], l.devices[i+1:]...)
	return true
}

// Reorder arranges the entries in the given id order. Ids not in the list
// are ignored; entries missing from order keep their relative order after
// the ordered ones.
func (l *UserList) Reorder(order []int64) {
	out := make([]UserDevice, 0, len(l.devices))
	placed := make(map[int64]struct{}, len(order))
	for _, id := range order {
		if _, dup := placed[id]; dup {
			continue
		}
		if i := l.index(id); i >= 0 {
			out = append(out, l.devices[i])
			placed[id] = struct{}{}
		}
	}
	for _, d := range l.devices {
		if _, ok := placed[d.ID]; !ok {
			out = append(out, d)
		}
	}
	l.devices = out
}

// IDs returns the set of listed device ids
func (l *UserList) IDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(l.devices))
	for _, d := range l.devices {
		ids[d.ID] = struct{}{}
	}
	return ids
}
