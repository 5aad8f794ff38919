// Package shared holds the plumbing used by the ILOCK packages and the CLI:
// Hedera network normalization and client construction, operator loading
// from the environment or a .env file, key parsing, and the zerolog logger
// factory.
//
// # Environment Variables
//
// HEDERA_NETWORK selects mainnet or testnet (default testnet).
// HEDERA_ACCOUNT_ID and HEDERA_PRIVATE_KEY name the operator; either may be
// overridden per network with a MAINNET_ or TESTNET_ prefix.
// ILOCK_ANCHOR_TOPIC_ID names the event anchor topic and ILOCK_LOG_LEVEL
// sets the log level.
package shared
