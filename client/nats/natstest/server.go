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

// Package natstest runs embedded NATS servers for tests.
package natstest

import (
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

var natsPort int32 = 42069

// NewServer starts a NATS server which is shut down when the test ends
func NewServer(t testing.TB) *server.Server {
	return NewServerOnPort(t, int(atomic.AddInt32(&natsPort, 1)))
}

// NewServerOnPort starts a NATS server listening on port
func NewServerOnPort(t testing.TB, port int) *server.Server {
	opts := &server.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	srv, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create NATS test server: %s", err)
	}
	go srv.Start()
	t.Cleanup(srv.Shutdown)

	// Spinlock until go routine is listening
	for i := 0; srv.Addr() == nil && i < 1000; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("failed to setup NATS test server")
	}
	return srv
}

// NewServerURI starts a NATS server and returns its client URI
func NewServerURI(t testing.TB) string {
	srv := NewServer(t)
	uri, err := url.Parse("nats://" + srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	return uri.String()
}
