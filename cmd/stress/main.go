// Package main is the stress command line tool. It runs stress scenarios
// against portfolio files and inspects the coefficient tables in use.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
