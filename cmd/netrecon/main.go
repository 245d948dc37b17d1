// Command netrecon is the CLI surface over the scan engine in
// internal/core: argument parsing, output formatting and the
// process-level adapters (internal/adapters) are wired here; none of
// it is imported back by internal/core.
package main

func main() {
	Execute()
}
