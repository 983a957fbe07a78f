package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/hidefolder/cmd/hidefolder"
	"github.com/arthur-debert/hidefolder/pkg/ui"
)

func main() {
	rootCmd := hidefolder.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := ui.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
