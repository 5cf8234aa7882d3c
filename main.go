package main

import "github.com/StinkyLord/archmap/cmd"

func main() {
	cmd.Execute()
}
