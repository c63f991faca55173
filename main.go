package main

import "github.com/racetelemetry/laprecorder/cmd"

func main() {
	cmd.Execute()
}
