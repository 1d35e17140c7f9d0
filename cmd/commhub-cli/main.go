package main

import "github.com/nfrund/commhub/cmd/commhub-cli/cmd"

func main() {
	cmd.Execute()
}
