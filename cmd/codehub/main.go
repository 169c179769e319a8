// Package main is the entry point for the codehub binary.
package main

import "github.com/jacobmentalconstruct/codehub/internal/cli"

func main() {
	cli.Execute()
}
