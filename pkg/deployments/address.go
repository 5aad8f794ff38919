package deployments

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress returns the deterministic instance address for contract
// deployed by deployer with salt, computed like CREATE2 with the salt and
// contract name hashed into the salt and init code hash. Equal inputs
// always give the same address.
func DeriveAddress(deployer common.Address, salt string, contract string) common.Address {
	var saltHash [32]byte
	copy(saltHash[:], crypto.Keccak256([]byte(strings.TrimSpace(salt))))
	return crypto.CreateAddress2(deployer, saltHash, crypto.Keccak256([]byte(strings.TrimSpace(contract))))
}

// NonceAddress returns the address of an unsalted deployment, the way a
// plain CREATE from deployer at nonce would.
func NonceAddress(deployer common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(deployer, nonce)
}
