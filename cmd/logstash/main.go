// Package main provides the entry point of the logstash launcher, which
// replaces itself with the Java-based logstash agent.
package main

import (
	"os"

	"logstash-launcher/cmd/logstash/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
