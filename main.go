// Idiomatic entrypoint for Cobra CLI that delegates to the root command in cmd/root.go

package main

import (
	"github.com/sbel-gpu/dem-engine/cmd"
)

func main() {
	cmd.Execute()
}
