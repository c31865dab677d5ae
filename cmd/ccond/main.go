package main

import "github.com/LeJamon/go-cryptoconditions/internal/cli"

func main() {
	cli.Execute()
}
