// Command dbml lexes, parses and checks DBML schema files.
package main

import "github.com/oarkflow/dbml/internal/cli"

func main() {
	cli.Execute()
}
