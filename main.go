package main

import "github.com/kgandhi/trackkeeper/cmd"

func main() {
	cmd.Execute()
}
