package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/taskflow-backend/internal/app"
	"github.com/yungbote/taskflow-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}

	err = a.Run(ctx)
	if err != nil {
		a.Log.Error("Server exited with error", "error", err)
	} else {
		a.Log.Info("Server stopped")
	}
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
