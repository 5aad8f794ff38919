// The Interlock Network ILOCK SDK for Go is a ledger engine for the ILOCK
// token: a capped, pausable ERC-20 style ledger with role-based or
// owner-based access control and a cooldown on large transfers. It can
// anchor every ledger event to a Hedera Consensus Service topic and replay
// that topic through the mirror node.
//
// # Packages
//
//   - pkg/ilock: the ledger engine, its errors, events and snapshots
//   - pkg/accounts: development signers and secp256k1 addresses
//   - pkg/deployments: the per-network deployment registry and snapshot files
//   - pkg/anchor: HCS event publishing and mirror-backed replay
//   - pkg/mirror: a small Hedera mirror node client
//   - pkg/shared: network, operator, .env and logger plumbing
//
// The ilock command in cmd/ilock drives a local ledger from the shell.
//
// # Installation
//
//	go get github.com/interlock-network/ilock-sdk-go@latest
package ilock_sdk_go
