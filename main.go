// Package main is the entry point for the testscope CLI.
package main

import "testscope.dev/pkg/testscope/cmd"

func main() {
	cmd.Execute()
}
