// Command layoutquery asks a running layout server about individual chunks.
//
//	layoutquery -op SPHERE 20,31 -1,17
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"citylayout.ai/internal/protocol"
)

func main() {
	var (
		url       = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name      = flag.String("name", "layoutquery", "client name")
		dimension = flag.String("dimension", "", "dimension (default: server default)")
		op        = flag.String("op", protocol.OpSphere, "query op: "+strings.Join(protocol.Ops(), ", "))
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[layoutquery] ", log.LstdFlags|log.Lmicroseconds)

	coords, err := parseCoords(flag.Args())
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if len(coords) == 0 {
		coords = []chunk{{0, 0}}
	}

	c, w, err := dial(*url, *name, *dimension)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer c.Close()
	logger.Printf("WELCOME session=%s seed=%d dimension=%s", w.SessionID, w.Seed, w.DefaultDimension)

	lines, err := c.queryAll(strings.ToUpper(strings.TrimSpace(*op)), *dimension, coords)
	for _, l := range lines {
		fmt.Println(string(l))
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}
}

type chunk struct{ X, Z int32 }

func parseCoords(args []string) ([]chunk, error) {
	out := make([]chunk, 0, len(args))
	for _, a := range args {
		xs, zs, ok := strings.Cut(a, ",")
		if !ok {
			return nil, fmt.Errorf("bad coordinate %q (want x,z)", a)
		}
		x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", a, err)
		}
		z, err := strconv.ParseInt(strings.TrimSpace(zs), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", a, err)
		}
		out = append(out, chunk{int32(x), int32(z)})
	}
	return out, nil
}
