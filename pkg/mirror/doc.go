// Package mirror is a small Hedera mirror node REST client. The anchor
// indexer uses it to read ILOCK ledger events back from their HCS topic in
// consensus order.
package mirror
