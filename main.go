// Command hfdl generates bash scripts that download every file of a Hugging
// Face repository from a mirror.
//
// Usage:
//
//	hfdl serve --addr :8000
//	hfdl generate openai-community/gpt2 > dl.sh
//
// See --help for all available options.
package main

import "github.com/raysh454/hfdl/internal/cli"

func main() {
	cli.Execute()
}
