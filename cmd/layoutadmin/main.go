// Command layoutadmin inspects the files a layout server and the dump tool
// leave in the data directory, and talks to a running server's admin API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	persistlog "citylayout.ai/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "kv":
			kvCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "clear":
			clearCmd(os.Args[2:])
			return
		case "lifecycle":
			lifecycleCmd(os.Args[2:])
			return
		}
	}
	lifecycleCmd(os.Args[1:])
}

func lifecycleCmd(args []string) {
	fs := flag.NewFlagSet("lifecycle", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := persistlog.NewLifecycleLogger(*dataDir).ReadAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		printJSON(e)
	}
}

func printJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
