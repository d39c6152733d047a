// Command plverify decides SAT/UNSAT/TIMEOUT/ERROR for piecewise-linear
// verification queries. See cmd/cli for the available subcommands.
package main

import "plverify/cmd/cli"

func main() {
	cmd.Execute()
}
