package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// ConnSubscriber adapts a websocket connection to the Subscriber
// interface. The write deadline keeps a stalled display from ever
// blocking a writer.
type ConnSubscriber struct {
	Conn *websocket.Conn
}

func (cs *ConnSubscriber) Deliver(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	cs.Conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return cs.Conn.WriteMessage(websocket.TextMessage, data)
}

// Close unsubscribes and closes the underlying connection.
func (cs *ConnSubscriber) Close() {
	Unsubscribe(cs)
	cs.Conn.Close()
}
