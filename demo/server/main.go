package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tarndt/wasmnet/internal/echo"
)

func main() {
	addr := pflag.String("addr", ":8080", "listen address")
	static := pflag.String("static", "./static", "directory served at / (wasm_exec.js, main.wasm, index.html)")
	origins := pflag.StringSlice("origin", nil, "additional origin patterns allowed to open websockets")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	//App context setup
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	//Setup HTTP / Websocket server
	router := http.NewServeMux()
	router.Handle("/echo", &echo.Handler{
		Subprotocols:   []string{"echo.v1"},
		OriginPatterns: *origins,
		Logger:         log,
	})
	router.Handle("/", http.FileServer(http.Dir(*static)))
	httpServer := &http.Server{Addr: *addr, Handler: router}

	//Run HTTP server
	go func() {
		defer appCancel()
		log.Info("Serving", "addr", *addr, "static", *static)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP Listen and Serve failed", "err", err)
		}
	}()

	//Handle signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info("Received shutdown signal", "signal", <-sigs)
		appCancel()
	}()

	//Shutdown
	<-appCtx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*2)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown incomplete", "err", err)
	}
}
