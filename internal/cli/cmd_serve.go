package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"vector-editor/internal/api"
)

type CmdServe struct {
	global *GlobalOptions

	Listen string `short:"l" long:"listen" description:"Listen address (defaults to api.listen from the config)"`
}

func init() {
	_, err := parser.AddCommand("serve",
		"Serve the HTTP API",
		"Serve the layer and feature API without opening the editor",
		&CmdServe{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdServe) Execute(args []string) error {
	cfg, err := cmd.global.LoadConfig()
	if err != nil {
		return err
	}
	listen := cfg.API.Listen
	if cmd.Listen != "" {
		listen = cmd.Listen
	}

	st, err := cmd.global.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Serve(ctx, listen, api.NewHandler(st))
}
