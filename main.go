package main

import "sharepool/cmd"

func main() {
	cmd.Execute()
}
