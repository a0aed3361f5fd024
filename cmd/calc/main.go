// Command calc evaluates arithmetic expressions with the same evaluator the bot uses.
//
//	calc eval "100 / 2.5"
//	calc eval -5 + 3
//	echo "2 + 2" | calc eval
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// failed expressions were already reported on stdout
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
