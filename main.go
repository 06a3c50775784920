package main

import (
	"github.com/ClaraUktar/pepti-map/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
