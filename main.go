package main

import "github.com/notargets/aqueous/cmd"

func main() {
	cmd.Execute()
}
