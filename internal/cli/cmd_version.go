package cli

import (
	"fmt"

	"vector-editor/internal/version"
)

type CmdVersion struct{}

func init() {
	_, err := parser.AddCommand("version",
		"Print version",
		"Print version and build information",
		&CmdVersion{})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdVersion) Execute(args []string) error {
	fmt.Println(version.String())
	return nil
}
