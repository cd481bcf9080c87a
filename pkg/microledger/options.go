/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package microledger

import (
	"github.com/trustbloc/microledger-go/pkg/authz"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/storage"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
)

// Options are the storage and codec options of a microledger.
type Options struct {
	Provider  storage.Provider
	AgentPath string
	Builder   *txnbuilder.Builder
	Verifier  authz.Verifier
}

// Option overrides a default of the options.
type Option func(opts *Options)

// WithBuilder sets the txn builder used by the high-level helpers.
func WithBuilder(b *txnbuilder.Builder) Option {
	return func(opts *Options) {
		opts.Builder = b
	}
}

// WithVerifier sets the signature verifier.
func WithVerifier(v authz.Verifier) Option {
	return func(opts *Options) {
		opts.Verifier = v
	}
}

// CreateOptions returns options storing logs in provider under agentPath.
func CreateOptions(provider storage.Provider, agentPath string, opts ...Option) *Options {
	o := &Options{
		Provider:  provider,
		AgentPath: agentPath,
		Builder:   txnbuilder.New(),
		Verifier:  crypto.New(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
