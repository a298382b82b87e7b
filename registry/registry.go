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

// Package registry holds the last known state of the stakes seen by a view.
package registry

import (
	"sort"

	"github.com/smartstake/stakeconnect/model"
)

// Registry maps device ids to the last known device record. It has a single
// owner (the session loop) and is not safe for concurrent use.
type Registry struct {
	devices map[int64]model.Device
}

// New returns an empty registry
func New() *Registry {
	return &Registry{devices: map[int64]model.Device{}}
}

// ApplySnapshot replaces the whole registry with the device table
func (r *Registry) ApplySnapshot(devices map[int64]model.Device) {
	next := make(map[int64]model.Device, len(devices))
	for id, dev := range devices {
		dev.ID = id
		dev.Recent = copyDetection(dev.Recent)
		next[id] = dev
	}
	r.devices = next
}

// ApplyStatus replaces the status, and the battery when given, of a known
// device. It returns false, leaving the registry untouched, for unknown ids.
func (r *Registry) ApplyStatus(id int64, status model.Status, battery *string) bool {
	dev, ok := r.devices[id]
	if !ok {
		return false
	}
	dev.Status = status
	if battery != nil {
		dev.Battery = *battery
	}
	r.devices[id] = dev
	return true
}

// ApplyAlert replaces the most recent detection of a known device. It
// returns false, leaving the registry untouched, for unknown ids.
func (r *Registry) ApplyAlert(id int64, det model.Detection) bool {
	dev, ok := r.devices[id]
	if !ok {
		return false
	}
	dev.Recent = &det
	r.devices[id] = dev
	return true
}

// Add inserts or replaces a device record
func (r *Registry) Add(dev model.Device) {
	dev.Recent = copyDetection(dev.Recent)
	r.devices[dev.ID] = dev
}

// Remove deletes a device record
func (r *Registry) Remove(id int64) bool {
	if _, ok := r.devices[id]; !ok {
		return false
	}
	delete(r.devices, id)
	return true
}

// Get returns the record of a device
func (r *Registry) Get(id int64) (model.Device, bool) {
	dev, ok := r.devices[id]
	if ok {
		dev.Recent = copyDetection(dev.Recent)
	}
	return dev, ok
}

// Contains tells if the device is known
func (r *Registry) Contains(id int64) bool {
	_, ok := r.devices[id]
	return ok
}

// Len returns the number of known devices
func (r *Registry) Len() int {
	return len(r.devices)
}

// IDs returns the known device ids in ascending order
func (r *Registry) IDs() []int64 {
	ids := make([]int64, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Devices returns a copy of the registry contents
func (r *Registry) Devices() map[int64]model.Device {
	out := make(map[int64]model.Device, len(r.devices))
	for id, dev := range r.devices {
		dev.Recent = copyDetection(dev.Recent)
		out[id] = dev
	}
	return out
}

func copyDetection(det *model.Detection) *model.Detection {
	if det == nil {
		return nil
	}
	c := *det
	return &c
}
