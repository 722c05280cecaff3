// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/node"
)

const devAccountCount = 10

// Amount is a token amount in decimal or 0x prefixed hex.
type Amount big.Int

func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	v, ok := math.ParseBig256(value.Value)
	if !ok {
		return errors.Errorf("line %d: invalid amount %q", value.Line, value.Value)
	}
	(*big.Int)(a).Set(v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return (*big.Int)(a).String(), nil
}

// ParamsConfig overrides the initial engine params. Unset fields keep their defaults.
type ParamsConfig struct {
	ValidatorMinimumPercentage *Amount `yaml:"validatorMinimumPercentage,omitempty"`
	SlashAmountPercentage      *Amount `yaml:"slashAmountPercentage,omitempty"`
	SolutionFeePercentage      *Amount `yaml:"solutionFeePercentage,omitempty"`
	TreasuryRewardPercentage   *Amount `yaml:"treasuryRewardPercentage,omitempty"`
	TaskOwnerRewardPercentage  *Amount `yaml:"taskOwnerRewardPercentage,omitempty"`
	SolutionsStakeAmount       *Amount `yaml:"solutionsStakeAmount,omitempty"`

	MinClaimSolutionTime               *uint64 `yaml:"minClaimSolutionTime,omitempty"`
	MinContestationVotePeriodTime      *uint64 `yaml:"minContestationVotePeriodTime,omitempty"`
	ContestationVoteExtensionTime      *uint64 `yaml:"contestationVoteExtensionTime,omitempty"`
	MaxContestationValidatorStakeSince *uint64 `yaml:"maxContestationValidatorStakeSince,omitempty"`
	ExitValidatorMinUnlockTime         *uint64 `yaml:"exitValidatorMinUnlockTime,omitempty"`
	SolutionRateLimit                  *uint64 `yaml:"solutionRateLimit,omitempty"`
}

type AccountConfig struct {
	Address string  `yaml:"address"`
	Balance *Amount `yaml:"balance"`
}

// Config is the genesis of a ledger.
type Config struct {
	Owner     string          `yaml:"owner"`
	Treasury  string          `yaml:"treasury,omitempty"`
	Pauser    string          `yaml:"pauser,omitempty"`
	StartTime uint64          `yaml:"startTime,omitempty"`
	Version   uint64          `yaml:"version,omitempty"`
	Params    *ParamsConfig   `yaml:"params,omitempty"`
	Accounts  []AccountConfig `yaml:"accounts,omitempty"`
}

func devAccount(i int) compute.Address {
	h := compute.Blake2b([]byte(fmt.Sprintf("compute-dev-account-%d", i)))
	return compute.BytesToAddress(h[12:])
}

// DevConfig funds a fixed set of accounts, the first one owns the engine.
func DevConfig() *Config {
	cfg := &Config{Owner: devAccount(0).String()}
	for i := range devAccountCount {
		cfg.Accounts = append(cfg.Accounts, AccountConfig{
			Address: devAccount(i).String(),
			Balance: (*Amount)(new(big.Int).Mul(big.NewInt(10_000), compute.Unit)),
		})
	}
	return cfg
}

// LoadConfig reads a yaml config file, unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config [%v]", path)
	}
	return &cfg, nil
}

// ID identifies the ledger built from the config.
func (c *Config) ID() (compute.Bytes32, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return compute.Bytes32{}, err
	}
	return compute.Blake2b(data), nil
}

func parseAddress(field, s string, required bool) (compute.Address, error) {
	if s == "" {
		if required {
			return compute.Address{}, errors.Errorf("%s: required", field)
		}
		return compute.Address{}, nil
	}
	addr, err := compute.ParseAddress(s)
	if err != nil {
		return compute.Address{}, errors.WithMessage(err, field)
	}
	return addr, nil
}

// Genesis builds the node genesis. A zero start time is replaced by now.
func (c *Config) Genesis(now uint64) (*node.Genesis, error) {
	owner, err := parseAddress("owner", c.Owner, true)
	if err != nil {
		return nil, err
	}
	treasury, err := parseAddress("treasury", c.Treasury, false)
	if err != nil {
		return nil, err
	}
	if treasury.IsZero() {
		treasury = owner
	}
	pauser, err := parseAddress("pauser", c.Pauser, false)
	if err != nil {
		return nil, err
	}

	gene := &node.Genesis{
		Engine: engine.Genesis{
			Owner:     owner,
			Treasury:  treasury,
			Pauser:    pauser,
			StartTime: c.StartTime,
			Version:   c.Version,
			Params:    c.Params.apply(params.DefaultValues()),
		},
	}
	if gene.Engine.StartTime == 0 {
		gene.Engine.StartTime = now
	}

	for i, acc := range c.Accounts {
		addr, err := parseAddress(fmt.Sprintf("accounts[%d].address", i), acc.Address, true)
		if err != nil {
			return nil, err
		}
		if acc.Balance == nil {
			return nil, errors.Errorf("accounts[%d].balance: required", i)
		}
		gene.Accounts = append(gene.Accounts, node.Account{
			Address: addr,
			Balance: new(big.Int).Set((*big.Int)(acc.Balance)),
		})
	}
	return gene, nil
}

func (p *ParamsConfig) apply(v *params.Values) *params.Values {
	if p == nil {
		return v
	}
	setBig := func(dst **big.Int, src *Amount) {
		if src != nil {
			*dst = new(big.Int).Set((*big.Int)(src))
		}
	}
	setUint := func(dst *uint64, src *uint64) {
		if src != nil {
			*dst = *src
		}
	}
	setBig(&v.ValidatorMinimumPercentage, p.ValidatorMinimumPercentage)
	setBig(&v.SlashAmountPercentage, p.SlashAmountPercentage)
	setBig(&v.SolutionFeePercentage, p.SolutionFeePercentage)
	setBig(&v.TreasuryRewardPercentage, p.TreasuryRewardPercentage)
	setBig(&v.TaskOwnerRewardPercentage, p.TaskOwnerRewardPercentage)
	setBig(&v.SolutionsStakeAmount, p.SolutionsStakeAmount)

	setUint(&v.MinClaimSolutionTime, p.MinClaimSolutionTime)
	setUint(&v.MinContestationVotePeriodTime, p.MinContestationVotePeriodTime)
	setUint(&v.ContestationVoteExtensionTime, p.ContestationVoteExtensionTime)
	setUint(&v.MaxContestationValidatorStakeSince, p.MaxContestationValidatorStakeSince)
	setUint(&v.ExitValidatorMinUnlockTime, p.ExitValidatorMinUnlockTime)
	setUint(&v.SolutionRateLimit, p.SolutionRateLimit)
	return v
}
