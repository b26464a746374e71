package main

import "github.com/agritrack/apiserver/cmd"

func main() {
	cmd.Execute()
}
