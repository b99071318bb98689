// faque CLI - programmable HTTP stand-in server
package main

import "github.com/getmockd/faque/pkg/cli"

func main() {
	cli.Execute()
}
