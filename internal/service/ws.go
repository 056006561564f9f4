package service

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/greenroom-app/greenroom/internal/types"
)

// Subscribe opens the conversation's websocket stream and delivers each
// JSON frame to onMessage. The returned function closes the stream; no
// events are delivered after it returns. A dropped connection ends the
// subscription silently — the poll fallback covers the gap.
func (c *Client) Subscribe(conversationID string, onMessage func(types.Message)) (func(), error) {
	streamURL, err := c.streamURL(conversationID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(streamURL, header)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = conn.Close()
		})
	}

	go func() {
		defer unsubscribe()
		for {
			var msg types.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case <-done:
				return
			default:
			}
			onMessage(msg)
		}
	}()

	return unsubscribe, nil
}

func (c *Client) streamURL(conversationID string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	case "http":
		base.Scheme = "ws"
	}
	path := "/v1/conversations/" + url.PathEscape(conversationID) + "/stream"
	base.Path = strings.TrimRight(base.Path, "/") + path
	return base.String(), nil
}
