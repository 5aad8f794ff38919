// Package deployments keeps the per-network registry of ILOCK deployments:
// the constructor arguments each network expects and the address every
// deployed or imported instance lives at. It also stores token snapshots,
// optionally brotli-compressed, so a deployment can be reopened later.
package deployments
