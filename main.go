package main

import "github.com/devicelab-dev/go-webdriver/pkg/cli"

func main() {
	cli.Execute()
}
