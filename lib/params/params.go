package params

import (
	"fmt"
	"time"

	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/storage"
)

// The parameter store holds the live protocol parameters. Registry behavior
// is driven by the plain names; the `P`-prefixed names drive the
// parameterizer's own proposal process.
//
// models
//  * 'name'
// 	- 'pm-param-<name>': `uint64`

const ParamPrefix string = "pm-param-"

const (
	MinDeposit        = "minDeposit"
	ApplyStageLength  = "applyStageLength"
	CommitStageLength = "commitStageLength"
	RevealStageLength = "revealStageLength"
	DispensationPct   = "dispensationPct"
	VoteQuorum        = "voteQuorum"

	PMinDeposit        = "pMinDeposit"
	PApplyStageLength  = "pApplyStageLength"
	PCommitStageLength = "pCommitStageLength"
	PRevealStageLength = "pRevealStageLength"
	PDispensationPct   = "pDispensationPct"
	PVoteQuorum        = "pVoteQuorum"
)

// DefaultParams are the genesis values; durations are in seconds.
var DefaultParams = map[string]uint64{
	MinDeposit:        100,
	ApplyStageLength:  600,
	CommitStageLength: 600,
	RevealStageLength: 600,
	DispensationPct:   50,
	VoteQuorum:        50,

	PMinDeposit:        500,
	PApplyStageLength:  1200,
	PCommitStageLength: 1200,
	PRevealStageLength: 1200,
	PDispensationPct:   50,
	PVoteQuorum:        50,
}

func GetParamKey(name string) string {
	return fmt.Sprintf("%s%s", ParamPrefix, name)
}

func IsKnownParam(name string) bool {
	_, ok := DefaultParams[name]
	return ok
}

// Validate rejects values a running registry could not operate under.
func Validate(name string, value uint64) error {
	if !IsKnownParam(name) {
		return errors.NoSuchParameter
	}

	switch name {
	case DispensationPct, PDispensationPct, VoteQuorum, PVoteQuorum:
		if value > 100 {
			return errors.InvalidParameterValue
		}
	default:
		if value == 0 {
			return errors.InvalidParameterValue
		}
	}

	return nil
}

// Init seeds the store with the given values, falling back to the defaults
// for anything not overridden. Already-seeded stores are left alone.
func Init(st *storage.LevelDBBackend, overrides map[string]uint64) error {
	for name, value := range overrides {
		if err := Validate(name, value); err != nil {
			return err
		}
	}

	for name, value := range DefaultParams {
		if v, ok := overrides[name]; ok {
			value = v
		}

		key := GetParamKey(name)
		exists, err := st.Has(key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := st.New(key, value); err != nil {
			return err
		}
	}

	return nil
}

func Get(st *storage.LevelDBBackend, name string) (value uint64, err error) {
	if !IsKnownParam(name) {
		return 0, errors.NoSuchParameter
	}

	if err = st.Get(GetParamKey(name), &value); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			return DefaultParams[name], nil
		}
		return
	}

	return
}

func Set(st *storage.LevelDBBackend, name string, value uint64) error {
	if err := Validate(name, value); err != nil {
		return err
	}

	key := GetParamKey(name)
	exists, err := st.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return st.Set(key, value)
	}
	return st.New(key, value)
}

// GetDuration reads a stage-length parameter as a duration; stage lengths are
// stored in seconds.
func GetDuration(st *storage.LevelDBBackend, name string) (time.Duration, error) {
	value, err := Get(st, name)
	if err != nil {
		return 0, err
	}

	return time.Duration(value) * time.Second, nil
}

// GetAll reads the whole live parameter surface.
func GetAll(st *storage.LevelDBBackend) (map[string]uint64, error) {
	all := map[string]uint64{}
	for name := range DefaultParams {
		value, err := Get(st, name)
		if err != nil {
			return nil, err
		}
		all[name] = value
	}

	return all, nil
}
