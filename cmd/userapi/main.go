// Command userapi is a small reference server for the /users resource that the
// console can target instead of jsonplaceholder.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"user-crud-console/cmd/userapi/app"
	"user-crud-console/cmd/userapi/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Fatal("application exited with error", zap.Error(err))
	}
}
