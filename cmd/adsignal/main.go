// Command adsignal inspects a page for advertising influence from the
// command line: a described page (inspect, remove) or a live browser tab
// (browse).
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
