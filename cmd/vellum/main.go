// Package main provides the vellum CLI.
package main

import "github.com/mesh-intelligence/vellum/internal/cli"

func main() {
	cli.Execute()
}
