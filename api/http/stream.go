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
	"context"
	"encoding/binary"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/smartstake/stakeconnect/app"
	"github.com/smartstake/stakeconnect/relay"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	WebsocketReadBufferSize  = 1024
	WebsocketWriteBufferSize = 1024

	HdrKeyOrigin = "Origin"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  WebsocketReadBufferSize,
	WriteBufferSize: WebsocketWriteBufferSize,
	Subprotocols:    []string{SubprotocolJSON, SubprotocolMsgpack},
	CheckOrigin:     allowAllOrigins,
	Error: func(
		w http.ResponseWriter, r *http.Request, s int, e error) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s)
		_, _ = w.Write([]byte(`{"error":` + strconv.Quote(e.Error()) + `}`))
	},
}

// StreamController serves the view streams; every websocket owns one broker
// session for as long as it stays open.
type StreamController struct {
	app  app.App
	conf relay.Config
}

// NewStreamController returns a new StreamController
func NewStreamController(app app.App, conf relay.Config) *StreamController {
	return &StreamController{
		app:  app,
		conf: conf,
	}
}

// List responds to GET /api/stream/list
func (h StreamController) List(c *gin.Context) {
	h.serve(c, relay.KindList)
}

// Map responds to GET /api/stream/map
func (h StreamController) Map(c *gin.Context) {
	h.serve(c, relay.KindMap)
}

func (h StreamController) serve(c *gin.Context, kind relay.Kind) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error(errors.Wrap(err,
			"unable to upgrade the request to websocket protocol"))
		return
	}
	codec := codecFor(conn.Subprotocol())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	shutdownID := h.app.RegisterShutdownCancel(cancel)
	defer h.app.UnregisterShutdownCancel(shutdownID)

	sess := relay.NewSession(kind, h.conf)
	l = l.F(log.Ctx{"client_id": sess.ClientID()})
	ctx = log.WithContext(ctx, l)
	l.Infof("view stream opened: %s", kind)

	ticker, err := keepAlive(conn)
	if err != nil {
		l.Error(err)
		conn.Close()
		return
	}
	defer ticker.Stop()

	go func() {
		if err := sess.Run(ctx); err != nil {
			l.Errorf("session terminated: %s", err.Error())
		}
	}()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		//nolint:errcheck
		websocketWriter(ctx, conn, codec, sess.Events(), ticker)
	}()

	websocketReader(ctx, conn, codec, sess)
	cancel()
	<-writerDone
	l.Infof("view stream closed: %s", kind)
}

// keepAlive installs the ping-pong handlers; they must be in place before
// the first read.
func keepAlive(conn *websocket.Conn) (*time.Ticker, error) {
	err := conn.SetReadDeadline(time.Now().Add(pongWait))
	if err != nil {
		return nil, err
	}
	ticker := time.NewTicker(pingPeriod)
	conn.SetPongHandler(func(string) error {
		ticker.Reset(pingPeriod)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(msg string) error {
		ticker.Reset(pingPeriod)
		err := conn.SetReadDeadline(time.Now().Add(pongWait))
		if err != nil {
			return err
		}
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(msg),
			time.Now().Add(writeWait),
		)
	})
	return ticker, nil
}

// websocketReader forwards the view commands to the session until the
// connection fails or the session is closed. Invalid commands are dropped.
func websocketReader(
	ctx context.Context,
	conn *websocket.Conn,
	codec streamCodec,
	sess *relay.Session,
) {
	l := log.FromContext(ctx)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				l.Warnf("view stream read error: %s", err.Error())
			}
			return
		}
		var cmd relay.Command
		if err := codec.Unmarshal(data, &cmd); err != nil {
			l.Warnf("dropping malformed command: %s", err.Error())
			continue
		}
		err = sess.Submit(ctx, cmd)
		switch {
		case err == nil:
		case err == relay.ErrSessionClosed || ctx.Err() != nil:
			return
		default:
			l.Warnf("dropping command %q: %s", cmd.Type, err.Error())
		}
	}
}

func websocketPing(conn *websocket.Conn) bool {
	pongWaitString := strconv.Itoa(int(pongWait.Seconds()))
	if err := conn.WriteControl(
		websocket.PingMessage,
		[]byte(pongWaitString),
		time.Now().Add(writeWait),
	); err != nil {
		return false
	}
	return true
}

func writerFinalizer(conn *websocket.Conn, e *error, l *log.Logger) {
	err := *e
	code := websocket.CloseNormalClosure
	var closeMsg string
	if err != nil {
		code = websocket.CloseInternalServerErr
		closeMsg = err.Error()
	}
	if err == nil || !websocket.IsUnexpectedCloseError(errors.Cause(err)) {
		errBody := make([]byte, len(closeMsg)+2)
		binary.BigEndian.PutUint16(errBody, uint16(code))
		copy(errBody[2:], closeMsg)
		errClose := conn.WriteControl(
			websocket.CloseMessage,
			errBody,
			time.Now().Add(writeWait),
		)
		if errClose != nil && err != nil {
			err = errors.Wrapf(err,
				"error sending websocket close frame: %s",
				errClose.Error(),
			)
		}
	}
	if err != nil {
		l.Errorf("websocket closed with error: %s", err.Error())
	}
	conn.Close()
}

// websocketWriter is the go-routine responsible for the writing end of the
// websocket. The routine forwards the session events and periodically pings
// the connection. It returns once the session has closed its event channel
// or the connection fails, closing the connection.
func websocketWriter(
	ctx context.Context,
	conn *websocket.Conn,
	codec streamCodec,
	events <-chan relay.Event,
	ticker *time.Ticker,
) (err error) {
	l := log.FromContext(ctx)
	defer writerFinalizer(conn, &err, l)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := codec.Marshal(ev)
			if err != nil {
				l.Errorf("failed to encode %s event: %s", ev.Type, err.Error())
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(codec.MessageType(), data); err != nil {
				return err
			}
		case <-ticker.C:
			if !websocketPing(conn) {
				return errors.New("connection timeout")
			}
		}
	}
}
