package deployments

import "fmt"

type DeploymentError struct {
	Message string
}

func (errorValue DeploymentError) Error() string {
	return errorValue.Message
}

type MissingArgsError struct {
	DeploymentError
	Network  string
	Contract string
}

func NewMissingArgsError(network string, contract string) error {
	return MissingArgsError{
		DeploymentError: DeploymentError{Message: fmt.Sprintf("contract owner address is not set for the %s on %s network", contract, network)},
		Network:         network,
		Contract:        contract,
	}
}

type AlreadyDeployedError struct {
	DeploymentError
	Record Record
}

func NewAlreadyDeployedError(record Record) error {
	return AlreadyDeployedError{
		DeploymentError: DeploymentError{Message: fmt.Sprintf("%s is already deployed on %s at %s", record.Contract, record.Network, record.Address.Hex())},
		Record:          record,
	}
}

type NotDeployedError struct {
	DeploymentError
	Network  string
	Contract string
}

func NewNotDeployedError(network string, contract string) error {
	return NotDeployedError{
		DeploymentError: DeploymentError{Message: fmt.Sprintf("%s is not deployed on %s", contract, network)},
		Network:         network,
		Contract:        contract,
	}
}
