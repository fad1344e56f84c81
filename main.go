package main

import "github.com/Armaan1620/myshell/cmd"

func main() {
	cmd.Execute()
}
