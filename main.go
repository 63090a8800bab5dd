package main

import "github.com/drgolem/lsbstego/cmd"

func main() {
	cmd.Execute()
}
