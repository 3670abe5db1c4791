// Package main is the field CLI: submit observations and browse the species
// guide from a terminal, without going through the API server.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
