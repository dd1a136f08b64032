package main

import "github.com/lguibr/reminders/cmd"

func main() {
	cmd.Execute()
}
