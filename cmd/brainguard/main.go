// Package main provides the entry point for the BrainGuard CLI.
package main

func main() {
	Execute()
}
