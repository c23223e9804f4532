// Package observer serves loopback-only HTTP endpoints for inspecting and
// resetting a running layout.
package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"

	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/protocol"
)

type Server struct {
	layout *world.Layout
	log    *log.Logger

	// Sessions reports the number of connected query clients, if known.
	Sessions func() int64
}

func NewServer(l *world.Layout, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{layout: l, log: logger}
}

type DimensionState struct {
	Name    string         `json:"name"`
	ID      int32          `json:"id"`
	Seed    int64          `json:"seed"`
	Profile string         `json:"profile"`
	Caches  map[string]int `json:"caches"`
}

type BootstrapResponse struct {
	ProtocolVersion string           `json:"protocol_version"`
	Seed            int64            `json:"seed"`
	Started         bool             `json:"started"`
	Sessions        int64            `json:"sessions"`
	Dimensions      []DimensionState `json:"dimensions"`
}

type ClearResponse struct {
	Cleared map[string]int `json:"cleared"`
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		resp := BootstrapResponse{
			ProtocolVersion: protocol.Version,
			Seed:            s.layout.Seed(),
			Started:         s.layout.Started(),
		}
		if s.Sessions != nil {
			resp.Sessions = s.Sessions()
		}
		for _, name := range s.layout.Dimensions() {
			d, _ := s.layout.Dimension(name)
			resp.Dimensions = append(resp.Dimensions, DimensionState{
				Name:    d.Name,
				ID:      d.ID,
				Seed:    d.Seed,
				Profile: d.Profile.Name,
				Caches:  d.Sizes(),
			})
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// ClearHandler drops every cached descriptor without a lifecycle transition.
func (s *Server) ClearHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		cleared := s.layout.ClearAll()
		s.log.Printf("admin clear from %s: %v", r.RemoteAddr, cleared)
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(ClearResponse{Cleared: cleared})
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
