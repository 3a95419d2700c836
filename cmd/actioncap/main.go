package main

import (
	"fmt"
	"os"

	"github.com/offlinefirst/actioncap/internal/cmd"
)

func main() {
	root := cmd.NewRootCommand()
	if err := root.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "actioncap:", err)
		os.Exit(1)
	}
}
