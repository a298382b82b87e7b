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
	"encoding/json"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAlertRequest(t *testing.T) {
	rec := &AlertRecord{
		DeviceID:       7,
		EventTime:      "2025-05-01T23:21:52",
		DetectedObject: "hog",
		Image:          "aGVsbG8=",
	}
	req := NewSaveAlertRequest(rec)
	require.NoError(t, req.Validate())
	assert.Equal(t, rec, req.Record())

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":7,"recent_obj":["2025-05-01T23:21:52","hog","aGVsbG8="]}`,
		string(b))
}

func TestSaveAlertRequestValidate(t *testing.T) {
	id := int64(1)
	testCases := []struct {
		Name    string
		Request SaveAlertRequest
		Field   string
	}{{
		Name:    "missing id",
		Request: SaveAlertRequest{RecentObj: []string{"t", "o", "i"}},
		Field:   "id",
	}, {
		Name:    "missing recent_obj",
		Request: SaveAlertRequest{ID: &id},
		Field:   "recent_obj",
	}, {
		Name:    "short recent_obj",
		Request: SaveAlertRequest{ID: &id, RecentObj: []string{"t", "o"}},
		Field:   "recent_obj",
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			err := tc.Request.Validate()
			errs, ok := err.(validation.Errors)
			if assert.True(t, ok, "expected validation errors, got %v", err) {
				assert.Contains(t, errs, tc.Field)
			}
		})
	}
}
