package main

import "github.com/carlink-io/carlink/cmd"

func main() {
	cmd.Execute()
}
