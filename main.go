package main

import "github.com/workhq/workplace-bot/cmd"

func main() {
	cmd.Execute()
}
