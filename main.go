package main

import "github.com/notargets/netsolver/cmd"

func main() {
	cmd.Execute()
}
