package deployments

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/interlock-network/ilock-sdk-go/pkg/ilock"
)

const ContractInterlockNetwork = ilock.DefaultName

// Args are the deployment arguments for one contract on one network. A zero
// ProxyAdminOwner means the deployer.
type Args struct {
	InitialOwner    common.Address `json:"initialOwner"`
	ProxyAdminOwner common.Address `json:"proxyAdminOwner"`
	Salt            string         `json:"salt,omitempty"`
}

// Record is a deployed or imported instance.
type Record struct {
	Network       string         `json:"network"`
	Contract      string         `json:"contract"`
	Address       common.Address `json:"address"`
	Deployer      common.Address `json:"deployer"`
	Variant       ilock.Variant  `json:"variant,omitempty"`
	Args          Args           `json:"args"`
	Snapshot      string         `json:"snapshot,omitempty"`
	AnchorTopicID string         `json:"anchorTopicId,omitempty"`
	Imported      bool           `json:"imported,omitempty"`
	DeployedAt    time.Time      `json:"deployedAt"`
}

type registryDocument struct {
	Args        map[string]map[string]Args   `json:"args"`
	Deployments map[string]map[string]Record `json:"deployments"`
}

// Registry is safe for concurrent use.
type Registry struct {
	mutex       sync.RWMutex
	args        map[string]map[string]Args
	deployments map[string]map[string]Record
}

func NewRegistry() *Registry {
	return &Registry{
		args:        map[string]map[string]Args{},
		deployments: map[string]map[string]Record{},
	}
}

// DefaultRegistry returns the public testnet arguments and addresses.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	owner := common.HexToAddress("0x4599Bb9B14e1bea536C175206cf878fe07dE390F")
	for _, network := range []string{"sepolia", "baseSepolia"} {
		registry.SetArgs(network, ContractInterlockNetwork, Args{
			InitialOwner:    owner,
			ProxyAdminOwner: owner,
			Salt:            "InterlockNetworkOwnsYou",
		})
	}
	for network, address := range map[string]string{
		"sepolia":         "0x4B4Ee17F14dFcA4d09fF3312f5733360134EA34D",
		"arbitrumSepolia": "0xdA942D8df10fdC9Ec2Ca7c65Cb909E656947428a",
	} {
		_, _ = registry.Import(network, ContractInterlockNetwork, common.HexToAddress(address), time.Time{})
	}
	return registry
}

// LoadRegistry reads a registry file. A missing file gives an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var document registryDocument
	if err := json.Unmarshal(payload, &document); err != nil {
		return nil, fmt.Errorf("failed to decode registry %s: %w", path, err)
	}

	registry := NewRegistry()
	for network, contracts := range document.Args {
		for contract, args := range contracts {
			registry.SetArgs(network, contract, args)
		}
	}
	for network, contracts := range document.Deployments {
		for contract, record := range contracts {
			record.Network = network
			record.Contract = contract
			registry.Put(record)
		}
	}
	return registry, nil
}

// Save writes the registry to path through a temporary file.
func (registry *Registry) Save(path string) error {
	registry.mutex.RLock()
	document := registryDocument{Args: registry.args, Deployments: registry.deployments}
	payload, err := json.MarshalIndent(document, "", "  ")
	registry.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return writeFileAtomic(path, append(payload, '\n'))
}

func (registry *Registry) SetArgs(network string, contract string, args Args) {
	network, contract = strings.TrimSpace(network), strings.TrimSpace(contract)
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if registry.args[network] == nil {
		registry.args[network] = map[string]Args{}
	}
	registry.args[network][contract] = args
}

func (registry *Registry) Args(network string, contract string) (Args, bool) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	args, ok := registry.args[strings.TrimSpace(network)][strings.TrimSpace(contract)]
	return args, ok
}

// Put stores record, replacing any earlier record for the same network and contract.
func (registry *Registry) Put(record Record) {
	record.Network = strings.TrimSpace(record.Network)
	record.Contract = strings.TrimSpace(record.Contract)
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if registry.deployments[record.Network] == nil {
		registry.deployments[record.Network] = map[string]Record{}
	}
	registry.deployments[record.Network][record.Contract] = record
}

func (registry *Registry) Get(network string, contract string) (Record, error) {
	network, contract = strings.TrimSpace(network), strings.TrimSpace(contract)
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	record, ok := registry.deployments[network][contract]
	if !ok {
		return Record{}, NewNotDeployedError(network, contract)
	}
	return record, nil
}

// Networks lists every network with arguments or deployments, sorted.
func (registry *Registry) Networks() []string {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	seen := map[string]struct{}{}
	for network := range registry.args {
		seen[network] = struct{}{}
	}
	for network := range registry.deployments {
		seen[network] = struct{}{}
	}
	networks := make([]string, 0, len(seen))
	for network := range seen {
		networks = append(networks, network)
	}
	slices.Sort(networks)
	return networks
}

// Import records an instance deployed elsewhere without running genesis.
func (registry *Registry) Import(network string, contract string, address common.Address, importedAt time.Time) (Record, error) {
	if address == (common.Address{}) {
		return Record{}, fmt.Errorf("address is required")
	}
	args, _ := registry.Args(network, contract)
	record := Record{
		Network:    network,
		Contract:   contract,
		Address:    address,
		Args:       args,
		Imported:   true,
		DeployedAt: importedAt.UTC(),
	}
	registry.Put(record)
	return registry.Get(network, contract)
}

func (registry *Registry) deployerNonce(network string, deployer common.Address) uint64 {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	var nonce uint64
	for _, record := range registry.deployments[strings.TrimSpace(network)] {
		if record.Deployer == deployer && !record.Imported {
			nonce++
		}
	}
	return nonce
}

func writeFileAtomic(path string, payload []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", directory, err)
	}
	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	temporaryPath := file.Name()
	defer os.Remove(temporaryPath)

	if _, err := file.Write(payload); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
