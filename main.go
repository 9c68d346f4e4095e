package main

import "cloud-manager/cmd"

func main() {
	cmd.Execute()
}
