package main

import "github.com/hsdfat8/diam2json/cmd/diam2json/cmd"

func main() {
	cmd.Execute()
}
