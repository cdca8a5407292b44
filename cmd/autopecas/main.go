// Command autopecas manages Mercado Livre auto parts listings from database
// queues.
package main

import (
	"context"
	"os"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
