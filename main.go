package main

import "github.com/bactn/vidloader/cmd"

func main() {
	cmd.Execute()
}
