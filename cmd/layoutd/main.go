package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"citylayout.ai/internal/config"
	"citylayout.ai/internal/layout/world"
	persistlog "citylayout.ai/internal/persistence/log"
	"citylayout.ai/internal/persistence/objstore"
	"citylayout.ai/internal/transport/observer"
	"citylayout.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed")
		configPath = flag.String("config", "./configs/worlds.yaml", "dimension config (.yaml or .toml; empty for built-in defaults)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableLog = flag.Bool("disable_lifecycle_log", false, "do not write the compressed lifecycle log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[layoutd] ", log.LstdFlags|log.Lmicroseconds)

	path := strings.TrimSpace(*configPath)
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			logger.Printf("config %s not found; using built-in defaults", path)
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	mirror, err := objstore.MirrorFromEnv(*dataDir, logger)
	if err != nil {
		logger.Fatalf("mirror: %v", err)
	}
	defer mirror.Close()

	opts := world.Options{Logger: logger}
	if !*disableLog {
		lc := persistlog.NewLifecycleLogger(*dataDir)
		if mirror != nil {
			lc.OnFileClosed(mirror.Enqueue)
		}
		defer lc.Close()
		opts.Sink = lc
	}
	layout, err := world.New(cfg, *seed, opts)
	if err != nil {
		logger.Fatalf("layout: %v", err)
	}
	layout.OnStart()
	defer layout.OnStop()

	ctx, cancel := signalContext()
	defer cancel()

	wsSrv, err := ws.NewServer(layout, logger)
	if err != nil {
		logger.Fatalf("ws server: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, layout, wsSrv, mirror)
	})

	if envBool("LC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		// Local-only admin endpoints.
		obsSrv := observer.NewServer(layout, logger)
		obsSrv.Sessions = wsSrv.Sessions
		mux.HandleFunc("/admin/v1/layout", obsSrv.BootstrapHandler())
		mux.HandleFunc("/admin/v1/layout/clear", obsSrv.ClearHandler())
	} else {
		logger.Printf("admin endpoints disabled (LC_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("LC_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s seed=%d dimensions=%v", *addr, *seed, layout.Dimensions())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Printf("ListenAndServe: %v", err)
	}
}

func writeMetrics(rw http.ResponseWriter, l *world.Layout, s *ws.Server, m *objstore.Mirror) {
	fmt.Fprintf(rw, "# HELP citylayout_cache_entries Cached descriptors per dimension and cache.\n")
	fmt.Fprintf(rw, "# TYPE citylayout_cache_entries gauge\n")
	for _, name := range l.Dimensions() {
		d, _ := l.Dimension(name)
		sizes := d.Sizes()
		caches := make([]string, 0, len(sizes))
		for c := range sizes {
			caches = append(caches, c)
		}
		sort.Strings(caches)
		for _, c := range caches {
			fmt.Fprintf(rw, "citylayout_cache_entries{dimension=%q,cache=%q} %d\n", name, c, sizes[c])
		}
	}

	fmt.Fprintf(rw, "# HELP citylayout_ws_sessions Connected query clients.\n")
	fmt.Fprintf(rw, "# TYPE citylayout_ws_sessions gauge\n")
	fmt.Fprintf(rw, "citylayout_ws_sessions %d\n", s.Sessions())

	fmt.Fprintf(rw, "# HELP citylayout_queries_total Queries answered.\n")
	fmt.Fprintf(rw, "# TYPE citylayout_queries_total counter\n")
	fmt.Fprintf(rw, "citylayout_queries_total %d\n", s.Queries())

	if m == nil {
		return
	}
	st := m.Stats()
	fmt.Fprintf(rw, "# HELP citylayout_mirror_queue_depth Files waiting for upload.\n")
	fmt.Fprintf(rw, "# TYPE citylayout_mirror_queue_depth gauge\n")
	fmt.Fprintf(rw, "citylayout_mirror_queue_depth %d\n", st.QueueDepth)
	fmt.Fprintf(rw, "# HELP citylayout_mirror_uploads_total Mirror uploads by result.\n")
	fmt.Fprintf(rw, "# TYPE citylayout_mirror_uploads_total counter\n")
	fmt.Fprintf(rw, "citylayout_mirror_uploads_total{result=\"ok\"} %d\n", st.UploadedTotal)
	fmt.Fprintf(rw, "citylayout_mirror_uploads_total{result=\"failed\"} %d\n", st.FailedTotal)
	fmt.Fprintf(rw, "citylayout_mirror_uploads_total{result=\"dropped\"} %d\n", st.DroppedTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
