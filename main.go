// The main package for the sitemark executable.
package main

import (
	"github.com/sitemark/sitemark/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
