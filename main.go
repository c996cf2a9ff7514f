package main

import "github.com/KaramelBytes/smelens-cli/cmd"

func main() {
	cmd.Execute()
}
