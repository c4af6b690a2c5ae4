package main

import "github.com/mvp-joe/codelens/internal/cli"

func main() {
	cli.Execute()
}
