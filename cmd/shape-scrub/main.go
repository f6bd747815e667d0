// Command shape-scrub sanitizes delimited text into canonical CSV.
package main

import "github.com/shapestone/shape-scrub/internal/cli"

func main() {
	cli.Execute()
}
