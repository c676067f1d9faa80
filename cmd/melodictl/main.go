// Command melodictl manages the tracker state from the terminal. It opens
// the same storage backend as the server, so it should not write to a
// SQLite file a running server also uses.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
