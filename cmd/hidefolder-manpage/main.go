package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/hidefolder/cmd/hidefolder"
)

func main() {
	if err := doc.GenMan(hidefolder.NewRootCmd(), hidefolder.ManHeader(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
