package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gamedevlabs/pixe/internal/logging"
)

// MessageHandler receives one notification message.
type MessageHandler func(Message)

// Notifications is a client for the board change notification service.
//
// The service broadcasts a message over a websocket whenever a board is
// modified, e.g. by another session editing the same board.
type Notifications struct {
	url   string
	token string
	conn  *websocket.Conn
	done  chan struct{}
	exit  chan struct{}
	mx    sync.Mutex
	hdl   MessageHandler
}

// NewNotifications sets up an unconnected notifications client.
func NewNotifications(url, token string) *Notifications {
	return &Notifications{
		url:   url,
		token: token,
	}
}

// Connect dials the websocket and starts the read and keepalive loops.
func (n *Notifications) Connect() error {
	if n.conn != nil {
		return fmt.Errorf("already connected")
	}

	logging.Debug("Connect to notifications service at %q", n.url)

	auth := http.Header{}
	auth.Set("Authorization", "Bearer "+n.token)
	conn, res, err := websocket.DefaultDialer.Dial(n.url, auth)
	if err != nil {
		if res != nil {
			return fmt.Errorf("websocket connection failed with status %v, error %v", res.StatusCode, err)
		}
		return fmt.Errorf("websocket connection failed: %v", err)
	}

	n.conn = conn
	n.done = make(chan struct{})
	n.exit = make(chan struct{})

	go n.loop()
	go n.read()

	return nil
}

// Disconnect asks the service to close the connection.
func (n *Notifications) Disconnect() {
	close(n.exit)
}

func (n *Notifications) onDisconnected() {
	logging.Debug("Notifications disconnected")
	n.mx.Lock()
	defer n.mx.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}

func (n *Notifications) loop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer n.onDisconnected()

	for {
		select {
		case <-n.done:
			return
		case <-n.exit:
			// close the connection by sending a close message
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			err := n.conn.WriteMessage(websocket.CloseMessage, msg)
			if err != nil {
				logging.Warning("Error sending close message: %v", err)
				return
			}
			// wait for the server to close the connection (or timeout)
			select {
			case <-n.done:
			case <-time.After(time.Second):
			}
			return
		case <-ticker.C:
			err := n.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				logging.Warning("Error sending ping: %v", err)
				return
			}
		}
	}
}

func (n *Notifications) read() {
	defer close(n.done)
	for {
		_, data, err := n.conn.ReadMessage()
		if err != nil {
			// server closed the connection
			logging.Debug("Notifications read loop ended: %v", err)
			return
		}
		n.onMessage(data)
	}
}

func (n *Notifications) onMessage(data []byte) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	if err != nil {
		logging.Warning("Discard unreadable notification: %v", err)
		return
	}

	n.mx.Lock()
	hdl := n.hdl
	n.mx.Unlock()

	if hdl == nil {
		return
	}
	hdl(msg)
}

// OnMessage registers the handler for incoming notifications.
func (n *Notifications) OnMessage(f MessageHandler) {
	n.mx.Lock()
	defer n.mx.Unlock()
	n.hdl = f
}
