package main

import (
	"maskedvaccine/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
