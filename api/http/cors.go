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

package http

import (
	"net/http"
	"strings"
)

func allowAllOrigins(r *http.Request) bool { return true }

// acceptedOrigins drops the blank entries an environment variable override
// leaves behind
func acceptedOrigins(origins []string) map[string]struct{} {
	originSet := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			originSet[origin] = struct{}{}
		}
	}
	return originSet
}

// SetAcceptedOrigins restricts the origins allowed to open a view stream.
// An empty list accepts any origin and a request without an Origin header
// is always accepted.
func SetAcceptedOrigins(origins []string) {
	originSet := acceptedOrigins(origins)
	if len(originSet) == 0 {
		wsUpgrader.CheckOrigin = allowAllOrigins
		return
	}
	wsUpgrader.CheckOrigin = func(r *http.Request) bool {
		actual, ok := r.Header[HdrKeyOrigin]
		if !ok {
			// Origin header not present
			return true
		} else if len(actual) == 0 {
			return false
		}
		_, allowed := originSet[actual[0]]
		return allowed
	}
}
