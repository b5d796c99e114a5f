package main

import "gitlab.com/netops-console/vyos_console_api/cmd"

func main() {
	cmd.Execute()
}
