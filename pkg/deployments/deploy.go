package deployments

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

type DeployParams struct {
	Network  string
	Contract string
	Deployer common.Address
	Settings ilock.Settings
	Options  []ilock.Option
	Now      time.Time
}

// Deploy runs genesis for the network's registered arguments and records
// the new instance. Salted deployments land at DeriveAddress; unsalted ones
// at the deployer's next nonce address.
func (registry *Registry) Deploy(params DeployParams) (*ilock.Token, Record, error) {
	network := strings.TrimSpace(params.Network)
	contract := strings.TrimSpace(params.Contract)
	if contract == "" {
		contract = ContractInterlockNetwork
	}

	args, ok := registry.Args(network, contract)
	if !ok || args.InitialOwner == (common.Address{}) {
		return nil, Record{}, NewMissingArgsError(network, contract)
	}
	if existing, err := registry.Get(network, contract); err == nil {
		return nil, Record{}, NewAlreadyDeployedError(existing)
	}

	settings := params.Settings
	if settings.Name == "" {
		settings = ilock.DefaultSettings()
	}
	token, err := ilock.New(settings, args.InitialOwner, params.Options...)
	if err != nil {
		return nil, Record{}, err
	}

	if args.ProxyAdminOwner == (common.Address{}) {
		args.ProxyAdminOwner = params.Deployer
	}
	address := NonceAddress(params.Deployer, registry.deployerNonce(network, params.Deployer))
	if strings.TrimSpace(args.Salt) != "" {
		address = DeriveAddress(params.Deployer, args.Salt, contract)
	}

	deployedAt := params.Now
	if deployedAt.IsZero() {
		deployedAt = time.Now()
	}
	record := Record{
		Network:    network,
		Contract:   contract,
		Address:    address,
		Deployer:   params.Deployer,
		Variant:    token.Variant(),
		Args:       args,
		DeployedAt: deployedAt.UTC(),
	}
	registry.Put(record)
	return token, record, nil
}
