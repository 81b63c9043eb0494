package main

import (
	"github.com/mj1618/visual-runner/cmd"

	// registers the robotgo backend when built with cgo
	_ "github.com/mj1618/visual-runner/internal/platform/desktop"
)

func main() {
	cmd.Execute()
}
