package main

import "github.com/khanhnv2901/seca-pagescan/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
