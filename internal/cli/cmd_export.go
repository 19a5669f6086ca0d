package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"vector-editor/internal/store"
)

type CmdExport struct {
	global *GlobalOptions

	Output string `short:"o" long:"output" description:"Output file (default stdout)"`
}

func init() {
	_, err := parser.AddCommand("export",
		"Export a layer",
		"Write every feature on a layer as a GeoJSON FeatureCollection",
		&CmdExport{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdExport) Usage() string {
	return "layer-id"
}

func (cmd CmdExport) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("layer not specified, Usage: %s", cmd.Usage())
	}
	cfg, err := cmd.global.LoadConfig()
	if err != nil {
		return err
	}
	st, err := cmd.global.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if cmd.Output != "" {
		f, err := os.Create(cmd.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return exportLayer(context.Background(), st, args[0], w)
}

func exportLayer(ctx context.Context, st *store.Store, layerID string, w io.Writer) error {
	if _, err := st.Layer(ctx, layerID); err != nil {
		return err
	}
	fc, err := st.FeaturesByLayer(ctx, layerID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
