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
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/smartstake/stakeconnect/model"
)

// Command types sent by the view
const (
	CommandUserList      = "user_list"
	CommandSelect        = "select"
	CommandDeselect      = "deselect"
	CommandPan           = "pan"
	CommandAcceptDevice  = "accept_device"
	CommandDeclineDevice = "decline_device"
	CommandRemoveDevice  = "remove_device"
	CommandReorder       = "reorder"
	CommandHistory       = "history"
)

// Command is a message from the view to the session
type Command struct {
	Type      string             `json:"type"`
	ID        *int64             `json:"id,omitempty"`
	Devices   []model.UserDevice `json:"devices,omitempty"`
	Order     []int64            `json:"order,omitempty"`
	Direction string             `json:"direction,omitempty"`
}

func (c Command) needsID() bool {
	switch c.Type {
	case CommandSelect, CommandAcceptDevice, CommandDeclineDevice,
		CommandRemoveDevice, CommandHistory:
		return true
	}
	return false
}

// Validate validates the command
func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Type, validation.Required, validation.In(
			CommandUserList,
			CommandSelect,
			CommandDeselect,
			CommandPan,
			CommandAcceptDevice,
			CommandDeclineDevice,
			CommandRemoveDevice,
			CommandReorder,
			CommandHistory,
		)),
		validation.Field(&c.ID, validation.When(c.needsID(), validation.NotNil)),
		validation.Field(&c.Direction, validation.When(c.Type == CommandPan,
			validation.Required,
			validation.In(model.PanLeft, model.PanRight, model.PanStop),
		)),
		validation.Field(&c.Devices),
	)
}
