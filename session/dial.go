package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	websocketHandshakeTimeout = 10 * time.Second
	websocketWriteTimeout     = 5 * time.Second
)

// wsSocket adapts a gorilla websocket connection to the Socket interface.
type wsSocket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// DialWebsocket opens a websocket channel to a normalized ws(s) address.
func DialWebsocket(address string) (Socket, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: websocketHandshakeTimeout,
	}

	conn, _, err := dialer.Dial(address, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	return &wsSocket{conn: conn}, nil
}

func (w *wsSocket) WriteJSON(v any) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(websocketWriteTimeout))
	return w.conn.WriteJSON(v)
}

// ReadMessage returns the next text payload, skipping any other frame kinds.
func (w *wsSocket) ReadMessage() ([]byte, error) {
	for {
		messageType, payload, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage {
			return payload, nil
		}
	}
}

func (w *wsSocket) Close() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(websocketWriteTimeout),
	)
	w.writeMu.Unlock()

	return w.conn.Close()
}
