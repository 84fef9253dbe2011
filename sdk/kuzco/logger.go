package kuzco

import (
	"context"
	"fmt"
)

// FmtLogger provides a simple stdout logger for tooling and examples.
func FmtLogger(ctx context.Context, msg string, args ...any) {
	fmt.Print(msg)

	for i := 0; i < len(args)-1; i = i + 2 {
		fmt.Printf(" %v[%v]", args[i], args[i+1])
	}

	fmt.Print("\n")
}
