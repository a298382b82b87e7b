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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for input, expected := range map[string]Status{
		"GOOD":    StatusGood,
		"good":    StatusGood,
		" Bad ":   StatusBad,
		"Off":     StatusOff,
		"unknown": StatusUnknown,
		"":        StatusUnknown,
		"broken":  StatusUnknown,
	} {
		assert.Equal(t, expected, ParseStatus(input), input)
	}
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, StatusDisplay{Label: "Good", Color: ColorGreen}, StatusGood.Display())
	assert.Equal(t, StatusDisplay{Label: "Bad", Color: ColorRed}, StatusBad.Display())
	assert.Equal(t, StatusDisplay{Label: "Off", Color: ColorGray}, StatusOff.Display())
	assert.Equal(t, StatusUnknown.Display(), Status("SMOKING").Display())
}

func TestPositionValid(t *testing.T) {
	assert.True(t, Position{Lat: 36.35, Lng: 127.38}.Valid())
	assert.True(t, Position{}.Valid())
	assert.False(t, NoPosition.Valid())
	assert.False(t, Position{Lat: math.Inf(1), Lng: 0}.Valid())
	assert.False(t, Position{Lat: 0, Lng: math.NaN()}.Valid())
}
