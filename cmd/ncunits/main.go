// Command ncunits queries CNC controls over nclink for their configured unit system.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
