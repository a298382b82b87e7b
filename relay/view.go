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
	"sort"

	"github.com/smartstake/stakeconnect/model"
)

// ViewState is the visual state of a view: the selected device, the
// devices raising an unacknowledged alert and the announced devices waiting
// for the operator to accept them.
type ViewState struct {
	selected    int64
	hasSelected bool
	alerted     map[int64]struct{}
	candidates  map[int64]model.Device
}

// NewViewState returns an empty view state
func NewViewState() *ViewState {
	return &ViewState{
		alerted:    map[int64]struct{}{},
		candidates: map[int64]model.Device{},
	}
}

// Select selects the device and acknowledges its alert
func (v *ViewState) Select(id int64) {
	v.selected = id
	v.hasSelected = true
	delete(v.alerted, id)
}

// Deselect clears the selection
func (v *ViewState) Deselect() {
	v.selected = 0
	v.hasSelected = false
}

// Selected returns the selected device
func (v *ViewState) Selected() (int64, bool) {
	return v.selected, v.hasSelected
}

// IsSelected implements registry.Marks
func (v *ViewState) IsSelected(id int64) bool {
	return v.hasSelected && v.selected == id
}

// MarkAlerted marks the device as raising an alert. The mark stays until
// the device is selected.
func (v *ViewState) MarkAlerted(id int64) {
	v.alerted[id] = struct{}{}
}

// IsAlerted implements registry.Marks
func (v *ViewState) IsAlerted(id int64) bool {
	_, ok := v.alerted[id]
	return ok
}

// Alerted returns the alerted devices in ascending order
func (v *ViewState) Alerted() []int64 {
	return sortedKeys(v.alerted)
}

// AddCandidate records an announced device. It returns false if the
// device is already pending.
func (v *ViewState) AddCandidate(dev model.Device) bool {
	if _, ok := v.candidates[dev.ID]; ok {
		return false
	}
	v.candidates[dev.ID] = dev
	return true
}

// TakeCandidate removes and returns a pending device
func (v *ViewState) TakeCandidate(id int64) (model.Device, bool) {
	dev, ok := v.candidates[id]
	if ok {
		delete(v.candidates, id)
	}
	return dev, ok
}

// IsCandidate tells if the device is pending
func (v *ViewState) IsCandidate(id int64) bool {
	_, ok := v.candidates[id]
	return ok
}

// Candidates returns the pending devices in ascending order
func (v *ViewState) Candidates() []int64 {
	ids := make([]int64, 0, len(v.candidates))
	for id := range v.candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Forget drops every mark held for the device
func (v *ViewState) Forget(id int64) {
	if v.IsSelected(id) {
		v.Deselect()
	}
	delete(v.alerted, id)
	delete(v.candidates, id)
}

func sortedKeys(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
