package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"citylayout.ai/internal/persistence/kvdump"
)

func kvCmd(args []string) {
	fs := flag.NewFlagSet("kv", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "leveldb directory (optional)")
	dim := fs.String("dimension", "overworld", "dimension name")
	key := fs.String("key", "", "key to fetch (get)")
	_ = fs.Parse(args)

	q := "count"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "layout.ldb")
	}

	st, err := kvdump.Open(path)
	exitOn("open", err)
	defer st.Close()

	switch q {
	case "count":
		out, err := kvCounts(st, *dim)
		exitOn("count", err)
		printJSON(out)
	case "get":
		var v json.RawMessage
		ok, err := st.Get([]byte(*key), &v)
		exitOn("get", err)
		if !ok {
			fmt.Fprintln(os.Stderr, "not found:", *key)
			os.Exit(2)
		}
		fmt.Println(string(v))
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		os.Exit(2)
	}
}

func kvCounts(st *kvdump.Store, dim string) (map[string]int, error) {
	out := map[string]int{}
	for _, kind := range []string{kvdump.KindSphere, kvdump.KindCity, kvdump.KindHighway, kvdump.KindRail} {
		n, err := st.Count(kind, dim)
		if err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}
