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
	"testing"

	"github.com/stretchr/testify/assert"
)

func listIDs(l *UserList) []int64 {
	ids := []int64{}
	for _, d := range l.Devices() {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestUserList(t *testing.T) {
	l := NewUserList([]UserDevice{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 1, Name: "duplicate"},
		{ID: 3, Name: "c"},
	})
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []int64{1, 2, 3}, listIDs(l))
	d, ok := l.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", d.Name)

	assert.False(t, l.Add(UserDevice{ID: 2}))
	assert.True(t, l.Add(UserDevice{ID: 4, Name: "d"}))
	assert.True(t, l.Contains(4))

	assert.True(t, l.Update(UserDevice{ID: 2, Name: "renamed"}))
	assert.False(t, l.Update(UserDevice{ID: 9}))
	d, _ = l.Get(2)
	assert.Equal(t, "renamed", d.Name)

	// the returned entries are copies
	devices := l.Devices()
	devices[0].Name = "mutated"
	d, _ = l.Get(1)
	assert.Equal(t, "a", d.Name)

	assert.True(t, l.Remove(3))
	assert.False(t, l.Remove(3))
	assert.Equal(t, []int64{1, 2, 4}, listIDs(l))
	_, ok = l.Get(3)
	assert.False(t, ok)

	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 4: {}}, l.IDs())
}

func TestUserListReorder(t *testing.T) {
	testCases := []struct {
		Name  string
		Order []int64
		IDs   []int64
	}{{
		Name:  "full order",
		Order: []int64{4, 1, 3, 2},
		IDs:   []int64{4, 1, 3, 2},
	}, {
		Name:  "partial order",
		Order: []int64{3},
		IDs:   []int64{3, 1, 2, 4},
	}, {
		Name:  "unknown and repeated ids",
		Order: []int64{9, 2, 2, 1},
		IDs:   []int64{2, 1, 3, 4},
	}, {
		Name: "empty order",
		IDs:  []int64{1, 2, 3, 4},
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			l := NewUserList([]UserDevice{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}})
			l.Reorder(tc.Order)
			assert.Equal(t, tc.IDs, listIDs(l))
		})
	}
}

func TestNewUserDevice(t *testing.T) {
	d := NewUserDevice(Device{ID: 12, Status: StatusBad, Battery: "40"})
	assert.Equal(t, UserDevice{
		ID:        12,
		Name:      "Stake 12",
		Status:    "Bad",
		StatusDot: ColorRed,
		Battery:   "40",
	}, d)

	d.SetStatus(StatusGood, "41")
	assert.Equal(t, "Good", d.Status)
	assert.Equal(t, ColorGreen, d.StatusDot)
	assert.Equal(t, "41", d.Battery)

	assert.NoError(t, d.Validate())
	assert.Error(t, UserDevice{ID: -1}.Validate())
}
