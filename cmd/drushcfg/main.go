// Package main is the entry point for the drushcfg CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/drushcfg/cmd/drushcfg/commands"
	"github.com/thoreinstein/drushcfg/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	code := errors.ExitUser
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			os.Exit(code)
		}
		err = exitErr
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if exitErr != nil && exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", exitErr.Suggestion)
	}
	os.Exit(code)
}
