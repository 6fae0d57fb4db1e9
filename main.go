package main

import "github.com/pharmadata-tools/labqa-cli/cmd"

func main() {
	cmd.Execute()
}
