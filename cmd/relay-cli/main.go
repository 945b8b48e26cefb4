package main

import "github.com/Mahd-Mehn/dao-voting/cmd/relay-cli/cmd"

func main() {
	cmd.Execute()
}
