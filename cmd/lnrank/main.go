// Command lnrank ranks Lightning Network nodes by betweenness centrality and
// simulates which single new channel would raise a target node's score most.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
