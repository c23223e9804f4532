package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/protocol"
)

const outQueue = 64

type Server struct {
	layout    *world.Layout
	log       *log.Logger
	validator *protocol.Validator

	upgrader websocket.Upgrader
	sessions atomic.Int64
	queries  atomic.Uint64
}

func NewServer(l *world.Layout, logger *log.Logger) (*Server, error) {
	v, err := protocol.NewValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		layout:    l,
		log:       logger,
		validator: v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}, nil
}

// Sessions is the number of currently connected clients.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// Queries is the number of queries answered since start.
func (s *Server) Queries() uint64 { return s.queries.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, dim := s.handshake(conn)
		if sessionID == "" {
			return
		}
		s.sessions.Add(1)
		defer s.sessions.Add(-1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan []byte, outQueue)

		// Writer goroutine.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			resp := s.handleMessage(msg, dim)
			b, err := json.Marshal(resp)
			if err != nil {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		<-writerDone
		s.log.Printf("session %s closed", sessionID)
	}
}

func (s *Server) handleMessage(msg []byte, defaultDim string) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return errorMsg("", protocol.ErrProtoBadRequest, "invalid json")
	}
	if base.Type != protocol.TypeQuery {
		return errorMsg("", protocol.ErrProtoBadRequest, "expected QUERY, got "+base.Type)
	}
	if !protocol.CompatibleVersion(base.ProtocolVersion) {
		return errorMsg("", protocol.ErrProtoVersion, "unsupported protocol_version "+base.ProtocolVersion)
	}
	var q protocol.QueryMsg
	if err := json.Unmarshal(msg, &q); err != nil {
		return errorMsg("", protocol.ErrBadRequest, err.Error())
	}
	if err := s.validator.Validate(protocol.TypeQuery, msg); err != nil {
		if q.Op != "" && !protocol.IsKnownOp(q.Op) {
			return errorMsg(q.ID, protocol.ErrUnknownOp, "unknown op "+q.Op)
		}
		return errorMsg(q.ID, protocol.ErrBadRequest, err.Error())
	}
	if q.Dimension == "" {
		q.Dimension = defaultDim
	}
	s.queries.Add(1)
	return Answer(s.layout, q)
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID, dim string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", ""
	}
	if err := s.validator.Validate(protocol.TypeHello, msg); err != nil {
		_ = writeJSON(conn, errorMsg("", protocol.ErrProtoHandshake, err.Error()))
		return "", ""
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", ""
	}
	if !protocol.CompatibleVersion(hello.ProtocolVersion) {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", ""
	}

	d, ok := s.layout.Dimension(strings.TrimSpace(hello.Dimension))
	if !ok {
		_ = writeJSON(conn, errorMsg("", protocol.ErrDimensionNotFound, "unknown dimension "+hello.Dimension))
		return "", ""
	}

	sessionID = uuid.NewString()
	if err := writeJSON(conn, s.welcome(sessionID, d.Name)); err != nil {
		return "", ""
	}
	s.log.Printf("session %s client=%q dimension=%s", sessionID, hello.ClientName, d.Name)
	return sessionID, d.Name
}

func (s *Server) welcome(sessionID, dim string) protocol.WelcomeMsg {
	w := protocol.WelcomeMsg{
		Type:             protocol.TypeWelcome,
		ProtocolVersion:  protocol.Version,
		SessionID:        sessionID,
		Seed:             s.layout.Seed(),
		DefaultDimension: dim,
		Ops:              protocol.Ops(),
	}
	for _, name := range s.layout.Dimensions() {
		d, _ := s.layout.Dimension(name)
		w.Dimensions = append(w.Dimensions, protocol.DimensionRef{
			Name:      d.Name,
			ID:        d.ID,
			Profile:   d.Profile.Name,
			CellSize:  d.Profile.CellSize,
			ScanCells: d.Profile.ScanCells,
		})
	}
	return w
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
