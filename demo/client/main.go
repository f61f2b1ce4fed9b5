package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tarndt/wasmnet"
)

func main() {
	//App context setup
	appCtx, appCancel := context.WithTimeout(context.Background(), time.Second*30)
	defer appCancel()

	const (
		pageURL      = "http://localhost:8080/"
		websocketURL = "ws://localhost:8080/echo"
	)

	//One-shot fetch
	resp, err := wasmnet.Get(pageURL).Cache(wasmnet.CacheNoStore).Send(appCtx)
	if err != nil {
		log.Fatalf("Could not fetch %s; Details: %s", pageURL, err)
	}
	page, err := resp.Bytes()
	if err != nil {
		log.Fatalf("Could not read %s; Details: %s", pageURL, err)
	}
	fmt.Printf("GET %s: %d %s (%d bytes)\n", pageURL, resp.Status(), resp.StatusText(), len(page))

	//Dial setup
	dialCtx, dialCancel := context.WithTimeout(appCtx, time.Second)
	defer dialCancel()
	conn, err := wasmnet.Dial(dialCtx, websocketURL, &wasmnet.Options{
		Protocols: []string{"echo.v1"},
		Logger:    slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		log.Fatalf("Could not dial %s; Details: %s", websocketURL, err)
	}

	//Reader and writer run independently; the reader ends on the Closed event
	events := conn.Events()
	eg, ctx := errgroup.WithContext(appCtx)
	eg.Go(func() error {
		for ev := range events.All(ctx) {
			fmt.Println("event:", ev)
		}
		return ctx.Err()
	})
	eg.Go(func() error {
		const ops = 16
		start := time.Now()
		for i := 1; i <= ops; i++ {
			if err := conn.SendText(fmt.Sprintf("hello %d", i)); err != nil {
				return fmt.Errorf("Send %d failed; Details: %w", i, err)
			}
		}
		fmt.Printf("Sent %d messages in %s\n", ops, time.Since(start))
		return conn.Close(wasmnet.StatusNormalClosure, "demo done")
	})
	if err = eg.Wait(); err != nil {
		log.Fatalf("Demo failed; Details: %s", err)
	}

	status, _ := conn.CloseStatus()
	fmt.Println("SUCCESS:", status)
}
