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

// Package relay holds the broker sessions of the browser views. A session
// keeps the device registry of a single view up to date from the broker,
// runs the alert pipeline and forwards the view commands to the stakes.
package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	natsio "github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/client/gateway"
	"github.com/smartstake/stakeconnect/client/nats"
	"github.com/smartstake/stakeconnect/model"
	"github.com/smartstake/stakeconnect/registry"
	"github.com/smartstake/stakeconnect/utils"
)

const (
	channelSize = 25

	// DefaultConnectTimeout is the time a session waits for the broker
	// before it shows the fallback dataset
	DefaultConnectTimeout = 3 * time.Second
)

// Session errors
var (
	ErrSessionClosed = errors.New("session closed")
)

// Kind is the consumption context of a session
type Kind string

// Session kinds
const (
	KindList Kind = "list"
	KindMap  Kind = "map"
)

// State is the broker connection state of a session
type State string

// Session states
const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Dialer opens a broker connection reporting its lifecycle to h
type Dialer func(url string, h nats.Handlers) (nats.Client, error)

// Config holds the collaborators and settings of the sessions
type Config struct {
	NatsURI        string
	ConnectTimeout time.Duration
	Dial           Dialer
	Gateway        gateway.Client
	Clock          utils.Clock
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Dial == nil {
		c.Dial = nats.NewClientWithDefaults
	}
	if c.Clock == nil {
		c.Clock = utils.RealClock{}
	}
	return c
}

type connEventType int

const (
	connEventDisconnected connEventType = iota
	connEventReconnected
	connEventClosed
)

type connEvent struct {
	typ connEventType
	err error
}

type dialResult struct {
	client nats.Client
	err    error
}

// Info is a copy of the session state
type Info struct {
	ClientID   string
	Kind       Kind
	State      State
	Fallback   bool
	Devices    map[int64]model.Device
	UserList   []model.UserDevice
	Selected   *int64
	Alerted    []int64
	Candidates []int64
}

// Session is the broker session of a single view. The registry, the user
// list and the view state are owned by the go-routine running Run; every
// other input reaches it over a channel.
type Session struct {
	kind     Kind
	clientID string
	conf     Config
	log      *log.Logger

	registry *registry.Registry
	list     *model.UserList
	view     *ViewState

	state         State
	fallback      bool
	everConnected bool
	liveData      bool
	connReported  bool

	conn    nats.Client
	subs    []nats.Subscription
	timer   *time.Timer
	timeout <-chan time.Time

	events     chan Event
	commands   chan Command
	msgs       chan *natsio.Msg
	connEvents chan connEvent
	dialed     chan dialResult
	calls      chan func(ctx context.Context)
	done       chan struct{}
}

// NewSession returns a session of the given kind. The session does nothing
// until Run is called.
func NewSession(kind Kind, conf Config) *Session {
	return &Session{
		kind:       kind,
		clientID:   uuid.NewString(),
		conf:       conf.withDefaults(),
		log:        log.NewEmpty(),
		registry:   registry.New(),
		list:       model.NewUserList(nil),
		view:       NewViewState(),
		state:      StateConnecting,
		events:     make(chan Event, channelSize),
		commands:   make(chan Command, channelSize),
		msgs:       make(chan *natsio.Msg, channelSize),
		connEvents: make(chan connEvent, channelSize),
		dialed:     make(chan dialResult),
		calls:      make(chan func(ctx context.Context)),
		done:       make(chan struct{}),
	}
}

// ClientID returns the identifier the session uses towards the broker
func (s *Session) ClientID() string {
	return s.clientID
}

// Kind returns the consumption context of the session
func (s *Session) Kind() Kind {
	return s.kind
}

// Events returns the channel of the events for the view. The channel is
// closed when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Submit queues a view command
func (s *Session) Submit(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return errors.Wrap(err, "invalid command")
	}
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn in the session go-routine and waits for it to return
func (s *Session) call(ctx context.Context, fn func(ctx context.Context)) error {
	ret := make(chan struct{})
	select {
	case s.calls <- func(ctx context.Context) {
		defer close(ret)
		fn(ctx)
	}:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ret:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inspect returns a copy of the session state
func (s *Session) Inspect(ctx context.Context) (*Info, error) {
	var info *Info
	err := s.call(ctx, func(context.Context) {
		info = &Info{
			ClientID:   s.clientID,
			Kind:       s.kind,
			State:      s.state,
			Fallback:   s.fallback,
			Devices:    s.registry.Devices(),
			UserList:   s.list.Devices(),
			Alerted:    s.view.Alerted(),
			Candidates: s.view.Candidates(),
		}
		if id, ok := s.view.Selected(); ok {
			info.Selected = &id
		}
	})
	return info, err
}

// Run connects to the broker and processes broker messages and view
// commands until ctx is done. The session is torn down when Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.log = log.FromContext(ctx).F(log.Ctx{
		"client_id": s.clientID,
		"view":      string(s.kind),
	})
	ctx = log.WithContext(ctx, s.log)
	defer s.teardown()

	s.timer = time.NewTimer(s.conf.ConnectTimeout)
	s.timeout = s.timer.C
	s.emitState(ctx)
	go s.dial()

	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-s.dialed:
			s.handleDial(ctx, res)

		case ev := <-s.connEvents:
			s.handleConnEvent(ctx, ev)

		case msg := <-s.msgs:
			s.handleMessage(ctx, msg)

		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)

		case fn := <-s.calls:
			fn(ctx)

		case <-s.timeout:
			s.timeout = nil
			s.handleTimeout(ctx)
		}
	}
}

func (s *Session) dial() {
	c, err := s.conf.Dial(s.conf.NatsURI, s.handlers())
	select {
	case s.dialed <- dialResult{client: c, err: err}:
	case <-s.done:
		if c != nil {
			c.Close()
		}
	}
}

func (s *Session) handlers() nats.Handlers {
	push := func(ev connEvent) {
		select {
		case s.connEvents <- ev:
		case <-s.done:
		}
	}
	return nats.Handlers{
		Disconnected: func(err error) {
			push(connEvent{typ: connEventDisconnected, err: err})
		},
		Reconnected: func() {
			push(connEvent{typ: connEventReconnected})
		},
		Closed: func() {
			push(connEvent{typ: connEventClosed})
		},
	}
}

func (s *Session) handleDial(ctx context.Context, res dialResult) {
	if res.err != nil {
		s.log.Errorf("failed to connect to the broker: %s", res.err.Error())
		s.fallbackIfNoLiveData(ctx)
		return
	}
	s.conn = res.client
	if s.connReported || s.conn.IsConnected() {
		s.handleConnected(ctx)
	}
}

func (s *Session) handleConnEvent(ctx context.Context, ev connEvent) {
	switch ev.typ {
	case connEventReconnected:
		if s.conn == nil {
			// the dialer has not returned the client yet
			s.connReported = true
			return
		}
		s.handleConnected(ctx)

	case connEventDisconnected:
		if ev.err != nil {
			s.log.Warnf("broker connection lost: %s", ev.err.Error())
		}
		if !s.everConnected {
			s.fallbackIfNoLiveData(ctx)
			return
		}
		if s.state == StateConnected {
			s.setState(ctx, StateReconnecting)
		}

	case connEventClosed:
		if !s.everConnected {
			s.fallbackIfNoLiveData(ctx)
		}
		s.setState(ctx, StateClosed)
	}
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timeout = nil
}

// handleConnected is idempotent: the connected transition may be reported
// both by the dialer and by the client callbacks.
func (s *Session) handleConnected(ctx context.Context) {
	if s.state == StateConnected {
		return
	}
	s.stopTimer()
	if s.fallback {
		s.fallback = false
		s.clearRegistry()
		s.emitDevices(ctx)
	}
	if !s.everConnected {
		s.everConnected = true
		s.subscribe()
	}
	s.setState(ctx, StateConnected)
	s.requestDevices()
}

func (s *Session) subjects() []string {
	if s.kind == KindMap {
		return []string{model.SubjectResponseAll, model.SubjectNotify}
	}
	return []string{model.SubjectNotify}
}

func (s *Session) subscribe() {
	for _, subject := range s.subjects() {
		sub, err := s.conn.ChanSubscribe(subject, s.msgs)
		if err != nil {
			s.log.Errorf("failed to subscribe to %s: %s", subject, err.Error())
			continue
		}
		s.subs = append(s.subs, sub)
	}
}

func (s *Session) timestamp() string {
	return s.conf.Clock.Now().Format(model.TimestampFormat)
}

func (s *Session) requestDevices() {
	data, err := json.Marshal(model.DeviceRequest{
		ID:        s.clientID,
		Timestamp: s.timestamp(),
	})
	if err != nil {
		s.log.Errorf("failed to encode the device table request: %s", err.Error())
		return
	}
	if err := s.conn.Publish(model.SubjectGetDevice, data); err != nil {
		s.log.Errorf("failed to request the device table: %s", err.Error())
	}
}

func (s *Session) handleTimeout(ctx context.Context) {
	if s.state == StateConnected || s.everConnected {
		return
	}
	s.log.Warnf("broker not connected within %s, showing the fallback dataset",
		s.conf.ConnectTimeout)
	s.enterFallback(ctx)
}

// fallbackIfNoLiveData never replaces a registry holding live data
func (s *Session) fallbackIfNoLiveData(ctx context.Context) {
	if s.liveData || s.fallback {
		return
	}
	s.stopTimer()
	s.enterFallback(ctx)
}

func (s *Session) enterFallback(ctx context.Context) {
	s.fallback = true
	s.registry.ApplySnapshot(registry.Fallback())
	s.emitState(ctx)
	s.emitDevices(ctx)
}

// clearRegistry drops the fallback dataset; the list view keeps the
// devices picked by the operator.
func (s *Session) clearRegistry() {
	s.registry.ApplySnapshot(nil)
	if s.kind == KindList {
		s.seedRegistry()
	}
}

// syncRegistry keeps the list registry in step with the user list: records
// of devices no longer listed are dropped, listed devices are seeded. The
// fallback dataset is left untouched until the broker connects.
func (s *Session) syncRegistry() {
	if s.fallback {
		return
	}
	listed := s.list.IDs()
	for _, id := range s.registry.IDs() {
		if _, ok := listed[id]; !ok {
			s.registry.Remove(id)
		}
	}
	s.seedRegistry()
	s.log.Debugf("list registry holds %d devices", s.registry.Len())
}

func (s *Session) seedRegistry() {
	for _, entry := range s.list.Devices() {
		if s.registry.Contains(entry.ID) {
			continue
		}
		s.registry.Add(model.Device{
			ID:       entry.ID,
			Battery:  entry.Battery,
			Status:   model.ParseStatus(entry.Status),
			Position: model.NoPosition,
		})
	}
}

func (s *Session) setState(ctx context.Context, state State) {
	if s.state == state {
		return
	}
	s.log.Debugf("broker session %s -> %s", s.state, state)
	s.state = state
	s.emitState(ctx)
}

func (s *Session) emit(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Session) emitState(ctx context.Context) {
	s.emit(ctx, Event{Type: EventState, Payload: StatePayload{
		State:    s.state,
		Fallback: s.fallback,
		ClientID: s.clientID,
	}})
}

func (s *Session) emitDevices(ctx context.Context) {
	var payload interface{}
	if s.kind == KindMap {
		payload = s.registry.MapItems(s.list, s.view)
	} else {
		payload = s.registry.ListItems(s.list, s.view)
	}
	s.emit(ctx, Event{Type: EventDevices, Payload: payload})
}

func (s *Session) emitUserList(ctx context.Context) {
	s.emit(ctx, Event{Type: EventUserList, Payload: s.list.Devices()})
}

// teardown stops every source of input; nothing is processed afterwards
func (s *Session) teardown() {
	close(s.done)
	s.stopTimer()
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warnf("failed to unsubscribe: %s", err.Error())
		}
	}
	s.subs = nil
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = StateClosed
	select {
	case s.events <- Event{Type: EventState, Payload: StatePayload{
		State:    s.state,
		Fallback: s.fallback,
		ClientID: s.clientID,
	}}:
	default:
	}
	close(s.events)
}
