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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartstake/stakeconnect/model"
)

type marks struct {
	alerted  map[int64]bool
	selected int64
}

func (m marks) IsAlerted(id int64) bool  { return m.alerted[id] }
func (m marks) IsSelected(id int64) bool { return m.selected == id }

func TestMapItems(t *testing.T) {
	r := New()
	r.Add(testDevice(1))
	r.Add(testDevice(2))
	unplaced := testDevice(3)
	unplaced.Position = model.NoPosition
	r.Add(unplaced)
	r.ApplyAlert(2, model.Detection{Time: "23:21:52", Target: "hog", Image: "x"})

	list := model.NewUserList([]model.UserDevice{
		{ID: 2, Name: "gate"},
		{ID: 3, Name: "unplaced"},
		{ID: 4, Name: "not reporting"},
		{ID: 1, Name: "barn"},
	})

	items := r.MapItems(list, marks{alerted: map[int64]bool{2: true}, selected: 1})
	if assert.Len(t, items, 2) {
		assert.Equal(t, int64(2), items[0].ID)
		assert.Equal(t, "gate", items[0].Name)
		assert.True(t, items[0].Alerted)
		assert.False(t, items[0].Selected)
		if assert.NotNil(t, items[0].Recent) {
			assert.Equal(t, "hog", items[0].Recent.Target)
		}
		assert.Equal(t, model.StatusGood.Display(), items[0].Status)

		assert.Equal(t, int64(1), items[1].ID)
		assert.Equal(t, "barn", items[1].Name)
		assert.False(t, items[1].Alerted)
		assert.True(t, items[1].Selected)
		assert.Nil(t, items[1].Recent)
	}

	assert.Empty(t, r.MapItems(nil, nil))
	assert.NotNil(t, r.MapItems(nil, nil))
	assert.Len(t, r.MapItems(list, nil), 2)
}

func TestListItems(t *testing.T) {
	r := New()
	dev := testDevice(1)
	dev.Status = model.StatusBad
	dev.Battery = "5"
	r.Add(dev)

	list := model.NewUserList([]model.UserDevice{
		{ID: 3, Name: "offline", Status: "Good", StatusDot: model.ColorGreen, Battery: "70"},
		{ID: 1, Name: "barn", Status: "Good", StatusDot: model.ColorGreen, Battery: "90"},
	})

	items := r.ListItems(list, marks{alerted: map[int64]bool{3: true}})
	if assert.Len(t, items, 2) {
		assert.Equal(t, ListItem{
			UserDevice: model.UserDevice{
				ID: 3, Name: "offline", Status: "Good",
				StatusDot: model.ColorGreen, Battery: "70",
			},
			Alerted: true,
		}, items[0])
		assert.Equal(t, ListItem{
			UserDevice: model.UserDevice{
				ID: 1, Name: "barn", Status: "Bad",
				StatusDot: model.ColorRed, Battery: "5",
			},
			Known: true,
		}, items[1])
	}
	// the projection does not touch the list
	entry, _ := list.Get(1)
	assert.Equal(t, "90", entry.Battery)

	assert.NotNil(t, r.ListItems(nil, nil))
}
