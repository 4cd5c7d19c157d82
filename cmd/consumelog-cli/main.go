package main

import (
	"context"
	"errors"
	"os"

	"consumelog-backend/cmd/consumelog-cli/commands"
	"consumelog-backend/lib/serviceutil"
	"consumelog-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "consumelog-cli")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())

	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(os.Getenv("DEBUG") != "")
	commands.ExecuteContext(ctx)
}
