package main

import "github.com/memfoundry/hybridstore/cmd"

func main() {
	cmd.Execute()
}
