package main

import "os"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}
