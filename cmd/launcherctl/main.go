// Package main provides the entry point for logstash-launcherctl, the
// operator companion of the logstash launcher.
package main

import (
	"os"

	"logstash-launcher/cmd/launcherctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
