package main

import (
	"fmt"
	"os"

	"github.com/imrishuroy/royal-pizza/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pizzactl:", err)
		os.Exit(1)
	}
}
