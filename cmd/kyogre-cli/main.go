package main

import (
	"github.com/orcalabs/kyogre-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
