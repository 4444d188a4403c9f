package hyper

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsMessage is the venue's websocket frame: a method/subscription pair
// outbound, a channel/data pair inbound.
type wsMessage struct {
	Method       string          `json:"method,omitempty"`
	Subscription *wsSubscription `json:"subscription,omitempty"`
	Channel      string          `json:"channel,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

type wsSubscription struct {
	Type string `json:"type"`
	Coin string `json:"coin,omitempty"`
}

type allMidsData struct {
	Mids map[string]string `json:"mids"`
}

// MidsStream subscribes to the venue's allMids channel and delivers
// each update until ctx is cancelled or the connection drops. The
// returned channel is closed on exit; this is the only place the client
// spawns a goroutine, and it is bound to ctx.
func (c *Client) MidsStream(ctx context.Context) (<-chan map[string]string, error) {
	wsURL := strings.Replace(c.transport.baseURL, "http", "ws", 1) + "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial " + wsURL, Attempts: 1, Err: err}
	}

	sub := wsMessage{Method: "subscribe", Subscription: &wsSubscription{Type: "allMids"}}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, &TransportError{Op: "subscribe allMids", Attempts: 1, Err: err}
	}

	out := make(chan map[string]string)
	go func() {
		defer close(out)
		defer conn.Close()

		// Unblock ReadMessage when the caller cancels.
		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("mids stream closed", zap.Error(err))
				}
				return
			}

			var msg wsMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				c.log.Warn("bad websocket frame", zap.Error(err))
				continue
			}
			if msg.Channel != "allMids" {
				continue
			}

			var data allMidsData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.log.Warn("bad allMids payload", zap.Error(err))
				continue
			}

			select {
			case out <- data.Mids:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
