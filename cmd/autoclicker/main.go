package main

import "github.com/oshokin/autoclicker/cmd/autoclicker/cmd"

func main() {
	cmd.Execute()
}
