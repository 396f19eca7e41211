package main

import (
	"context"
	"os"

	"github.com/Temutjin2k/vehicle-tracker/cmd/tracker/app"
)

func main() {
	ctx := context.Background()
	if err := app.NewTrackerCommand(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}
