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

package nats

import (
	"time"

	natsio "github.com/nats-io/nats.go"
)

const (
	// Set reconnect buffer size in bytes (10 MB)
	reconnectBufSize = 10 * 1024 * 1024
	// Set reconnect interval to 1 second
	reconnectWaitTime = 1 * time.Second
)

// Client is the nats client
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	Publish(string, []byte) error
	ChanSubscribe(string, chan *natsio.Msg) (Subscription, error)
	IsConnected() bool
	Close()
}

// Subscription is an active subscription of the client
type Subscription interface {
	Unsubscribe() error
}

// Handlers are the connection lifecycle callbacks. They are invoked from
// the nats client go-routines; nil handlers are skipped. A connection
// established in the background after a failed first attempt is reported
// through Reconnected.
type Handlers struct {
	Disconnected func(err error)
	Reconnected  func()
	Closed       func()
}

// NewClient returns a new nats client
func NewClient(url string, opts ...natsio.Option) (Client, error) {
	natsClient, err := natsio.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		nats: natsClient,
	}, nil
}

// NewClientWithDefaults returns a new nats client which keeps retrying to
// connect and reconnect in the background, reporting to h
func NewClientWithDefaults(url string, h Handlers) (Client, error) {
	return NewClient(url, DefaultOptions(h))
}

// DefaultOptions returns the connection options used by NewClientWithDefaults
func DefaultOptions(h Handlers) natsio.Option {
	return func(o *natsio.Options) error {
		o.AllowReconnect = true
		o.MaxReconnect = -1
		o.ReconnectBufSize = reconnectBufSize
		o.ReconnectWait = reconnectWaitTime
		o.RetryOnFailedConnect = true
		o.ClosedCB = func(_ *natsio.Conn) {
			if h.Closed != nil {
				h.Closed()
			}
		}
		o.DisconnectedErrCB = func(_ *natsio.Conn, e error) {
			if h.Disconnected != nil {
				h.Disconnected(e)
			}
		}
		o.ReconnectedCB = func(_ *natsio.Conn) {
			if h.Reconnected != nil {
				h.Reconnected()
			}
		}
		return nil
	}
}

type client struct {
	nats *natsio.Conn
}

func (c *client) Publish(subj string, data []byte) error {
	return c.nats.Publish(subj, data)
}

func (c *client) ChanSubscribe(subj string,
	channel chan *natsio.Msg) (Subscription, error) {
	sub, err := c.nats.ChanSubscribe(subj, channel)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (c *client) IsConnected() bool {
	return c.nats.IsConnected()
}

func (c *client) Close() {
	c.nats.Close()
}
