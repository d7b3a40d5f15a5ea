// Command modulemd parses, validates, merges and emits module metadata.
package main

import "github.com/cameronsjo/modulemd/internal/cmd"

func main() {
	cmd.Execute()
}
