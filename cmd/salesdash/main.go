package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	EnvFile []string `name:"env-file" default:".env" help:"Dotenv files loaded before the environment (missing files are skipped)."`
	Mock    bool     `help:"Serve built-in demo data instead of calling the sales backend."`

	Serve serveCmd `cmd:"" default:"withargs" help:"Run the sales dashboard server."`
	Fetch fetchCmd `cmd:"" help:"Run one sales query and print the merged timeline."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("salesdash"),
		kong.Description("Sales analytics dashboard: historical and predicted sales on one timeline."),
		kong.UsageOnError(),
	)
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx.BindTo(runCtx, (*context.Context)(nil))
	err := ctx.Run(&app)
	ctx.FatalIfErrorf(err)
}
