package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/curatenet/tcr/cmd/tcr/common"
	"github.com/curatenet/tcr/lib/common/keypair"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/storage"
	"github.com/curatenet/tcr/lib/token"

	tcrcommon "github.com/curatenet/tcr/lib/common"
)

const (
	initialBalance = "1,000,000,000"
)

var (
	flagBalance    string = tcrcommon.GetENVValue("TCR_GENESIS_BALANCE", initialBalance)
	flagParamsFile string = tcrcommon.GetENVValue("TCR_PARAMS", "")
)

func init() {
	var genesisCmd = &cobra.Command{
		Use:   "genesis <public key>",
		Short: "initialize a new registry",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			flagName, err := MakeGenesis(args[0], flagBalance, flagParamsFile, flagStorageConfigString)
			if len(flagName) != 0 || err != nil {
				common.PrintFlagsError(c, flagName, err)
			}

			fmt.Println("successfully initialized the registry")
		},
	}

	genesisCmd.Flags().StringVar(&flagBalance, "balance", flagBalance, "initial balance of the genesis account")
	genesisCmd.Flags().StringVar(&flagParamsFile, "params", flagParamsFile, "yaml file with parameter overrides")
	genesisCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")

	rootCmd.AddCommand(genesisCmd)
}

// MakeGenesis seeds a fresh storage with the parameter table and the genesis
// token account. It is public so `node --genesis` can reuse it with the same
// defaults and error messages.
//
// Returns the name of the offending flag and the error when something went
// wrong; either being non-empty is an error.
func MakeGenesis(addressStr, balanceStr, paramsFile, storageString string) (string, error) {
	kp, err := keypair.Parse(addressStr)
	if err != nil {
		return "<public key>", err
	}

	if len(balanceStr) == 0 {
		balanceStr = initialBalance
	}
	balance, err := common.ParseAmountFromString(balanceStr)
	if err != nil {
		return "--balance", err
	}

	var overrides map[string]uint64
	if len(paramsFile) > 0 {
		b, err := ioutil.ReadFile(paramsFile)
		if err != nil {
			return "--params", err
		}
		if err := yaml.Unmarshal(b, &overrides); err != nil {
			return "--params", err
		}
	}

	if len(storageString) == 0 {
		storageString = tcrcommon.GetENVValue("TCR_STORAGE", "")
		if len(storageString) == 0 {
			if currentDirectory, err := os.Getwd(); err == nil {
				if currentDirectory, err = filepath.Abs(currentDirectory); err == nil {
					storageString = fmt.Sprintf("file://%s/db", currentDirectory)
				}
			}
			if len(storageString) == 0 {
				return "--storage", errors.New("failed to resolve a default storage uri")
			}
		}
	}

	storageConfig, err := storage.NewConfigFromString(storageString)
	if err != nil {
		return "--storage", err
	}

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		return "--storage", fmt.Errorf("failed to initialize storage: %v", err)
	}
	defer st.Close()

	exists, err := token.ExistsAccount(st, kp.Address())
	if err != nil {
		return "--storage", err
	}
	if exists {
		return "<public key>", errors.New("account is already created")
	}

	if err := params.Init(st, overrides); err != nil {
		return "--params", err
	}

	if _, err := token.CreateAccount(st, kp.Address(), balance); err != nil {
		return "<public key>", err
	}

	return "", nil
}
