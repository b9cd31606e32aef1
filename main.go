package main

import "bulk-merge/cmd"

func main() {
	cmd.Execute()
}
