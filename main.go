package main

import "github.com/asc-academy/evaluation-portal/cmd"

func main() {
	cmd.Execute()
}
