package accounts

// Signers are the named development accounts. From DefaultMnemonic they
// are the first six Hardhat accounts, 0xf39F... first.
type Signers struct {
	Deployer     Account
	InitialOwner Account
	Pauser       Account
	Minter       Account
	Burner       Account
	TestAccount  Account
}

var signerNames = []string{"deployer", "initialOwner", "pauser", "minter", "burner", "testAccount"}

// NamedSigners derives the development signers from mnemonic.
func NamedSigners(mnemonic string) (Signers, error) {
	derived, err := Derive(mnemonic, "", len(signerNames))
	if err != nil {
		return Signers{}, err
	}
	for index := range derived {
		derived[index].Name = signerNames[index]
	}
	return Signers{
		Deployer:     derived[0],
		InitialOwner: derived[1],
		Pauser:       derived[2],
		Minter:       derived[3],
		Burner:       derived[4],
		TestAccount:  derived[5],
	}, nil
}

// All returns the signers in derivation order.
func (signers Signers) All() []Account {
	return []Account{
		signers.Deployer,
		signers.InitialOwner,
		signers.Pauser,
		signers.Minter,
		signers.Burner,
		signers.TestAccount,
	}
}

// ByName finds a signer by its name, e.g. "minter".
func (signers Signers) ByName(name string) (Account, bool) {
	for _, account := range signers.All() {
		if account.Name == name {
			return account, true
		}
	}
	return Account{}, false
}
