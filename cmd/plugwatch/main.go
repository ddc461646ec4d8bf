// Command plugwatch keeps a laptop charged sensibly through a TP-Link
// Kasa smart plug.
package main

import "github.com/sweeney/plugwatch/internal/cli"

func main() {
	cli.Execute()
}
