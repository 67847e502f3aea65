package main

import "github.com/clarity-cash/claritycash/cmd/clarityctl/cmd"

func main() {
	cmd.Execute()
}
