package main

import (
	"fmt"
	"os"

	"github.com/maxkimambo/taskdeps/cmd"
	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, taskerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
