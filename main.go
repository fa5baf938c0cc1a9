package main

import "ats-catalog/cmd"

func main() {
	cmd.Execute()
}
