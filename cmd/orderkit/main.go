package main

import "orderkit/internal/cmd"

func main() {
	cmd.Execute()
}
