// Command maintenance runs operational tasks against the configured stores:
//
//	go run ./cmd/maintenance cleanup-cache
//	go run ./cmd/maintenance set-tier --user someone@example.com --tier yearly
package main

import "os"

func main() {
	if err := newRootCmd(openCore).Execute(); err != nil {
		os.Exit(1)
	}
}
