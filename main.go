package main

import "github.com/wfunc/lobbyclient/cmd"

func main() {
	cmd.Execute()
}
