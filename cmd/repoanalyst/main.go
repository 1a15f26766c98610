package main

import "github.com/archinspect/repoanalyst/internal/cli"

func main() {
	cli.Execute()
}
