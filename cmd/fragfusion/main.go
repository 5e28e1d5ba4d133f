package main

import "github.com/dhruv-ramu/FragmentFusion/internal/cli"

func main() {
	cli.Execute()
}
