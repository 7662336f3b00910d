// Command pagetex renders document bundles to PNG files and inspects
// bundles. Settings come from PAGETEX_* environment variables and can be
// overridden with flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pagetex:", err)
		os.Exit(1)
	}
}
