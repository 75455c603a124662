package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
)

// FeedURL returns the WebSocket URL of the feed served on address.
func FeedURL(address string) string {
	u := url.URL{Scheme: "ws", Host: address, Path: "/ws"}

	return u.String()
}

// Watch connects to the feed at feedURL and calls handle for every message
// until ctx is done or the connection drops.
func Watch(ctx context.Context, feedURL string, handle func(Message)) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return fmt.Errorf("dial status feed: %w", err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("read status feed: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		handle(msg)
	}
}
