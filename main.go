package main

import "criollotv/cmd"

func main() {
	cmd.Execute()
}
