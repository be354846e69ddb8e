package main

import "github.com/JzuvGTI/jzrestapi/cmd"

func main() {
	cmd.Execute()
}
