package main

import "github.com/sarchlab/alloctrack/alloctrack/cmd"

func main() {
	cmd.Execute()
}
