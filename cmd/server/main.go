package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/kuzco/cmd/server/api/services/kuzco"
)

func main() {
	showHelp := len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help")

	if err := kuzco.Run(showHelp); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
