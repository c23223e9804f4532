package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"citylayout.ai/internal/protocol"
)

type client struct {
	conn *websocket.Conn
}

// dial connects and completes the HELLO/WELCOME handshake.
func dial(url, name, dimension string) (*client, protocol.WelcomeMsg, error) {
	var w protocol.WelcomeMsg
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, w, fmt.Errorf("dial: %w", err)
	}
	c := &client{conn: conn}
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      name,
		Dimension:       dimension,
	}
	if err := conn.WriteJSON(hello); err != nil {
		c.Close()
		return nil, w, fmt.Errorf("send HELLO: %w", err)
	}
	msg, err := c.read()
	if err != nil {
		c.Close()
		return nil, w, fmt.Errorf("read WELCOME: %w", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		c.Close()
		return nil, w, err
	}
	if base.Type != protocol.TypeWelcome {
		c.Close()
		return nil, w, fmt.Errorf("handshake refused: %s", msg)
	}
	if err := json.Unmarshal(msg, &w); err != nil {
		c.Close()
		return nil, w, err
	}
	return c, w, nil
}

func (c *client) Close() error { return c.conn.Close() }

func (c *client) read() ([]byte, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}

// queryAll sends one query per chunk and collects the raw RESULT or ERROR
// replies in request order.
func (c *client) queryAll(op, dimension string, coords []chunk) ([][]byte, error) {
	for i, ch := range coords {
		q := protocol.QueryMsg{
			Type:            protocol.TypeQuery,
			ProtocolVersion: protocol.Version,
			ID:              strconv.Itoa(i),
			Op:              op,
			Dimension:       dimension,
			X:               ch.X,
			Z:               ch.Z,
		}
		if err := c.conn.WriteJSON(q); err != nil {
			return nil, fmt.Errorf("send QUERY: %w", err)
		}
	}

	out := make([][]byte, len(coords))
	for n := 0; n < len(coords); {
		msg, err := c.read()
		if err != nil {
			return out, err
		}
		var reply struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(msg, &reply); err != nil {
			continue
		}
		if reply.Type != protocol.TypeResult && reply.Type != protocol.TypeError {
			continue
		}
		i, err := strconv.Atoi(reply.ID)
		if err != nil || i < 0 || i >= len(out) || out[i] != nil {
			continue
		}
		out[i] = msg
		n++
	}
	return out, nil
}
