package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/km-arc/goboot/examples/audit" // plugin: loaded through discovery
	"github.com/km-arc/goboot/examples/greeter"
	"github.com/km-arc/goboot/framework/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// greeter.Greeter{} names its module through its package path; the audit
	// plugin joins on its own unless GOBOOT_AUTO_PLUGINS=false.
	application, err := app.New(greeter.Greeter{}) // loads .env automatically
	if err != nil {
		log.Fatalf("boot: %v", err)
	}

	// GET /greet/{name}  GET /audit  GET /_boot/modules
	if err := application.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
