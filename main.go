package main

import "ytgrab/cmd"

func main() {
	cmd.Execute()
}
