// Command guestctl administers the guest list from the terminal using the
// same configuration and storage medium as the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
