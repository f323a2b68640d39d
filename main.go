package main

import "github.com/datatrust/preference-management/cmd"

func main() {
	cmd.Execute()
}
