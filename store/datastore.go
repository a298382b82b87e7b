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

package store

import (
	"context"
	"errors"

	"github.com/smartstake/stakeconnect/model"
)

// DataStore interface for DataStore services
//
//go:generate ../utils/mockgen.sh
type DataStore interface {
	Ping(ctx context.Context) error
	// InsertAlert appends an alert record; records are never updated
	InsertAlert(ctx context.Context, alert *model.AlertRecord) error
	// GetRecentAlerts returns at most limit alerts of the device, newest
	// event time first
	GetRecentAlerts(ctx context.Context, deviceID int64, limit int) ([]model.AlertRecord, error)
	Close() error
}

var (
	ErrNilAlert = errors.New("store: nil alert")
)
