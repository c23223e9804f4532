package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"citylayout.ai/internal/config"
	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/protocol"
)

func testLayout(t *testing.T) *world.Layout {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	l, err := world.New(cfg, 1337, world.Options{})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return l
}

func dial(t *testing.T, l *world.Layout) (*Server, *websocket.Conn) {
	t.Helper()
	s, err := NewServer(l, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return s, conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return b
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	var w protocol.WelcomeMsg
	if err := json.Unmarshal(recv(t, conn), &w); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	return w
}

func TestServer_HandshakeAndQueries(t *testing.T) {
	l := testLayout(t)
	s, conn := dial(t, l)

	w := hello(t, conn)
	if w.Type != protocol.TypeWelcome || w.DefaultDimension != "overworld" || w.Seed != 1337 {
		t.Fatalf("welcome=%+v", w)
	}
	if _, err := uuid.Parse(w.SessionID); err != nil {
		t.Fatalf("session id %q: %v", w.SessionID, err)
	}
	if len(w.Dimensions) != 1 || w.Dimensions[0].CellSize != 16 || w.Dimensions[0].ScanCells != 4 {
		t.Fatalf("dimensions=%+v", w.Dimensions)
	}

	send(t, conn, protocol.QueryMsg{Type: protocol.TypeQuery, ID: "q1", Op: protocol.OpSphere, X: 20, Z: 31})
	var res protocol.ResultMsg
	if err := json.Unmarshal(recv(t, conn), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.ID != "q1" || res.Sphere == nil {
		t.Fatalf("result=%+v", res)
	}
	sp := res.Sphere
	if sp.Center != (protocol.ChunkRef{X: 24, Z: 24}) || !sp.Enabled || sp.North || !sp.South || sp.Base != "quartz_block" {
		t.Fatalf("sphere=%+v", sp)
	}

	send(t, conn, protocol.QueryMsg{Type: protocol.TypeQuery, ID: "q2", Op: protocol.OpCenter, X: -1, Z: 17})
	res = protocol.ResultMsg{}
	if err := json.Unmarshal(recv(t, conn), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Center == nil || *res.Center != (protocol.ChunkRef{X: -8, Z: 24}) {
		t.Fatalf("center=%+v", res.Center)
	}

	send(t, conn, protocol.QueryMsg{Type: protocol.TypeQuery, ID: "q3", Op: protocol.OpEnclosed, X: 8, Z: 8})
	res = protocol.ResultMsg{}
	if err := json.Unmarshal(recv(t, conn), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Value == nil || *res.Value {
		t.Fatalf("(8,8) sphere is disabled for seed 1337; value=%v", res.Value)
	}
	if s.Queries() != 3 {
		t.Fatalf("Queries=%d", s.Queries())
	}
}

func TestServer_Errors(t *testing.T) {
	_, conn := dial(t, testLayout(t))
	hello(t, conn)

	cases := []struct {
		raw  string
		code string
	}{
		{`not json`, protocol.ErrProtoBadRequest},
		{`{"type":"HELLO","protocol_version":"1.0","client_name":"x"}`, protocol.ErrProtoBadRequest},
		{`{"type":"QUERY","protocol_version":"2.0","id":"a","op":"CENTER","x":0,"z":0}`, protocol.ErrProtoVersion},
		{`{"type":"QUERY","id":"b","op":"TELEPORT","x":0,"z":0}`, protocol.ErrUnknownOp},
		{`{"type":"QUERY","id":"c","op":"CENTER","x":"0","z":0}`, protocol.ErrBadRequest},
		{`{"type":"QUERY","id":"d","op":"CENTER","dimension":"nether","x":0,"z":0}`, protocol.ErrDimensionNotFound},
	}
	for _, tc := range cases {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(recv(t, conn), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.Type != protocol.TypeError || e.Code != tc.code {
			t.Fatalf("%s: got %+v want code %s", tc.raw, e, tc.code)
		}
		if !protocol.IsKnownCode(e.Code) {
			t.Fatalf("unknown code %s", e.Code)
		}
	}
}

func TestServer_HandshakeUnknownDimension(t *testing.T) {
	_, conn := dial(t, testLayout(t))
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "x", Dimension: "nether"})
	var e protocol.ErrorMsg
	if err := json.Unmarshal(recv(t, conn), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Code != protocol.ErrDimensionNotFound {
		t.Fatalf("got %+v", e)
	}
}

func TestAnswer_MatchesDimension(t *testing.T) {
	l := testLayout(t)
	d := l.Default()
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	for _, op := range protocol.Ops() {
		for x := int32(-20); x <= 20; x += 7 {
			q := protocol.QueryMsg{Type: protocol.TypeQuery, ID: "id", Op: op, X: x, Z: 8}
			out := Answer(l, q)
			res, ok := out.(protocol.ResultMsg)
			if !ok {
				t.Fatalf("%s: expected RESULT, got %+v", op, out)
			}
			if err := v.ValidateValue(protocol.TypeResult, res); err != nil {
				t.Fatalf("%s: schema: %v", op, err)
			}
			switch op {
			case protocol.OpMonorailH:
				if *res.Value != d.HasHorizontalConnectivity(x, 8) {
					t.Fatalf("MONORAIL_H mismatch at x=%d", x)
				}
			case protocol.OpMonorailV:
				if *res.Value != d.HasVerticalConnectivity(x, 8) {
					t.Fatalf("MONORAIL_V mismatch at x=%d", x)
				}
			case protocol.OpRailway:
				if res.Railway.Type != d.Railway(x, 8).Type.String() {
					t.Fatalf("RAILWAY mismatch at x=%d", x)
				}
			case protocol.OpHighway:
				if h := d.Highway(x, 8); res.Highway.XLevel != h.XLevel || res.Highway.ZLevel != h.ZLevel {
					t.Fatalf("HIGHWAY mismatch at x=%d", x)
				}
			}
		}
	}
	if out, ok := Answer(l, protocol.QueryMsg{Op: "NOPE", Dimension: ""}).(protocol.ErrorMsg); !ok || out.Code != protocol.ErrUnknownOp {
		t.Fatalf("unknown op: %+v", out)
	}
}
