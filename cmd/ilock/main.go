// Command ilock runs the ILOCK ledger locally: it deploys a token into a
// snapshot file, applies operations as the development signers, and can
// anchor every resulting event to a Hedera topic.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
