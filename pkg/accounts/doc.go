// Package accounts creates the secp256k1 accounts that drive a local ILOCK
// ledger: development signers derived from a BIP-39 mnemonic along the
// BIP-44 Ethereum path, fresh random accounts, and accounts imported from a
// hex private key. Addresses are derived the Ethereum way, from the
// keccak256 hash of the uncompressed public key.
package accounts
