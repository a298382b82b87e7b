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

package app

import (
	"context"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smartstake/stakeconnect/model"
	store_mocks "github.com/smartstake/stakeconnect/store/mocks"
)

func int64p(i int64) *int64 {
	return &i
}

func TestHealthCheck(t *testing.T) {
	err := errors.New("error")

	store := store_mocks.NewDataStore(t)
	store.On("Ping",
		mock.MatchedBy(func(ctx context.Context) bool {
			return true
		}),
	).Return(err)

	app := New(store)

	ctx := context.Background()
	res := app.HealthCheck(ctx)
	assert.Equal(t, err, res)
}

func TestSaveAlert(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name string

		Request  *model.SaveAlertRequest
		StoreErr error
		NoStore  bool

		Validation bool
		Error      error
	}{{
		Name: "ok",

		Request: &model.SaveAlertRequest{
			ID:        int64p(7),
			RecentObj: []string{"2025-05-01T23:21:52", "hog", "aGVsbG8="},
		},
	}, {
		Name: "ok, extra fields ignored",

		Request: &model.SaveAlertRequest{
			ID: int64p(7),
			RecentObj: []string{
				"2025-05-01T23:21:52", "hog", "aGVsbG8=", "extra",
			},
		},
	}, {
		Name: "error, too few fields",

		Request: &model.SaveAlertRequest{
			ID:        int64p(7),
			RecentObj: []string{"2025-05-01T23:21:52", "hog"},
		},
		NoStore:    true,
		Validation: true,
	}, {
		Name: "error, no fields",

		Request:    &model.SaveAlertRequest{ID: int64p(7)},
		NoStore:    true,
		Validation: true,
	}, {
		Name: "error, missing id",

		Request: &model.SaveAlertRequest{
			RecentObj: []string{"2025-05-01T23:21:52", "hog", "aGVsbG8="},
		},
		NoStore:    true,
		Validation: true,
	}, {
		Name: "error, nil request",

		NoStore: true,
		Error:   ErrNilRequest,
	}, {
		Name: "error, store failure",

		Request: &model.SaveAlertRequest{
			ID:        int64p(7),
			RecentObj: []string{"2025-05-01T23:21:52", "hog", "aGVsbG8="},
		},
		StoreErr: errors.New("connection refused"),
		Error:    errors.New("connection refused"),
	}}

	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			ds := store_mocks.NewDataStore(t)
			if !tc.NoStore {
				ds.On("InsertAlert", mock.Anything, &model.AlertRecord{
					DeviceID:       *tc.Request.ID,
					EventTime:      tc.Request.RecentObj[0],
					DetectedObject: tc.Request.RecentObj[1],
					Image:          tc.Request.RecentObj[2],
				}).Return(tc.StoreErr)
			}

			err := New(ds).SaveAlert(context.Background(), tc.Request)
			switch {
			case tc.Validation:
				if assert.Error(t, err) {
					_, ok := errors.Cause(err).(validation.Errors)
					assert.True(t, ok, "expected validation errors, got %T", err)
				}
			case tc.Error != nil:
				assert.EqualError(t, err, tc.Error.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetRecentAlerts(t *testing.T) {
	alerts := []model.AlertRecord{{
		DeviceID:       7,
		EventTime:      "2025-05-01T23:21:52",
		DetectedObject: "hog",
		Image:          "aGVsbG8=",
	}}
	ds := store_mocks.NewDataStore(t)
	ds.On("GetRecentAlerts", mock.Anything, int64(7), model.RecentAlertsLimit).
		Return(alerts, nil)
	ds.On("GetRecentAlerts", mock.Anything, int64(8), model.RecentAlertsLimit).
		Return(nil, errors.New("timeout"))

	app := New(ds)
	res, err := app.GetRecentAlerts(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, alerts, res)

	res, err = app.GetRecentAlerts(context.Background(), 8)
	assert.EqualError(t, err, "timeout")
	assert.Nil(t, res)
}

func TestShutdown(t *testing.T) {
	app := New(nil)

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	ctx3, cancel3 := context.WithCancel(context.Background())
	defer cancel3()

	id1 := app.RegisterShutdownCancel(cancel1)
	id2 := app.RegisterShutdownCancel(cancel2)
	id3 := app.RegisterShutdownCancel(cancel3)
	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id2, id3)
	app.UnregisterShutdownCancel(id3)

	done := make(chan struct{})
	go func() {
		app.ShutdownDone()
		close(done)
	}()
	app.Shutdown(30 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ShutdownDone did not return")
	}
	assert.Error(t, ctx1.Err())
	assert.Error(t, ctx2.Err())
	assert.NoError(t, ctx3.Err())
}
