package main

import (
	"ai-menu-assistant/internal/cli"
)

func main() {
	cli.Execute()
}
