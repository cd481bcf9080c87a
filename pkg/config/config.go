/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config reads agent settings from TOML.
//
//	[storage]
//	backend = "bolt"
//	path = "/var/lib/agent"
//
//	[txn]
//	protocolVersion = 1
//	txnVersion = 1
//
//	[resolution]
//	method = "did:sov"
//
//	[log]
//	spec = "microledger-protocol=debug:info"
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// DefaultMethod prefixes DIDs in resolved documents.
const DefaultMethod = "did:sov"

// BoltFileName is the name of the bolt database file in the storage path.
const BoltFileName = "microledger.db"

// AgentConfig holds the settings of an agent.
type AgentConfig struct {
	Storage    StorageConfig    `toml:"storage"`
	Txn        TxnConfig        `toml:"txn"`
	Resolution ResolutionConfig `toml:"resolution"`
	Log        LogConfig        `toml:"log"`
}

// StorageConfig selects where microledgers are kept.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// TxnConfig holds the versions written into built txns.
type TxnConfig struct {
	ProtocolVersion int `toml:"protocolVersion"`
	TxnVersion      int `toml:"txnVersion"`
}

// ResolutionConfig controls DID document rendering.
type ResolutionConfig struct {
	Method string `toml:"method"`
}

// LogConfig holds the log level spec, see log.SetSpec.
type LogConfig struct {
	Spec string `toml:"spec"`
}

// Default returns the default configuration: in-memory storage, version 1 txns.
func Default() *AgentConfig {
	return &AgentConfig{
		Storage:    StorageConfig{Backend: BackendMemory},
		Txn:        TxnConfig{ProtocolVersion: 1, TxnVersion: 1},
		Resolution: ResolutionConfig{Method: DefaultMethod},
	}
}

// Parse decodes a TOML document over the defaults.
func Parse(data []byte) (*AgentConfig, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "decode agent config")
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown agent config keys: %v", undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads and parses the TOML file at path.
func Load(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrapf(err, "read agent config [%s]", path)
	}

	return Parse(data)
}

// Validate checks the settings are usable.
func (c *AgentConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendBolt:
		if c.Storage.Path == "" {
			return errors.New("storage path is required for the bolt backend")
		}
	default:
		return errors.Errorf("unsupported storage backend [%s]", c.Storage.Backend)
	}

	if c.Txn.ProtocolVersion < 1 || c.Txn.TxnVersion < 1 {
		return errors.Errorf("txn versions must be positive, got protocol %d txn %d",
			c.Txn.ProtocolVersion, c.Txn.TxnVersion)
	}

	if c.Resolution.Method == "" {
		return errors.New("resolution method is required")
	}

	return nil
}
