/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/config"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/storage"
	"github.com/trustbloc/microledger-go/pkg/storage/boltstore"
	"github.com/trustbloc/microledger-go/pkg/storage/memstore"
	"github.com/trustbloc/microledger-go/pkg/txnbuilder"
	"github.com/trustbloc/microledger-go/pkg/wallet"
)

// Option configures an agent.
type Option func(opts *options)

type options struct {
	provider storage.Provider
	builder  *txnbuilder.Builder
	wallet   *wallet.Wallet
	peerID   string
	cfg      *config.AgentConfig
}

// WithStorageProvider keeps microledgers in p. The caller owns p.
func WithStorageProvider(p storage.Provider) Option {
	return func(opts *options) {
		opts.provider = p
	}
}

// WithTxnBuilder sets the builder of the txns the agent authors.
func WithTxnBuilder(b *txnbuilder.Builder) Option {
	return func(opts *options) {
		opts.builder = b
	}
}

// WithWallet keeps the agent key in w instead of a new in-memory wallet.
func WithWallet(w *wallet.Wallet) Option {
	return func(opts *options) {
		opts.wallet = w
	}
}

// WithPeerID sets the transport name of the agent instead of a random one.
func WithPeerID(id string) Option {
	return func(opts *options) {
		opts.peerID = id
	}
}

// WithConfig applies the storage, txn and log settings of cfg. Explicit options win.
func WithConfig(cfg *config.AgentConfig) Option {
	return func(opts *options) {
		opts.cfg = cfg
	}
}

// resolve fills the unset options from the config and returns whether the agent owns
// the storage provider.
func (o *options) resolve() (bool, error) {
	if o.cfg == nil {
		o.cfg = config.Default()
	}

	if err := o.cfg.Validate(); err != nil {
		return false, err
	}

	if o.cfg.Log.Spec != "" {
		if err := log.SetSpec(o.cfg.Log.Spec); err != nil {
			return false, errors.WithMessage(err, "apply log spec")
		}
	}

	if o.builder == nil {
		o.builder = txnbuilder.New(
			txnbuilder.WithProtocolVersion(o.cfg.Txn.ProtocolVersion),
			txnbuilder.WithTxnVersion(o.cfg.Txn.TxnVersion),
		)
	}

	if o.provider != nil {
		return false, nil
	}

	switch o.cfg.Storage.Backend {
	case config.BackendBolt:
		if err := os.MkdirAll(o.cfg.Storage.Path, 0o700); err != nil {
			return false, errors.Wrapf(mlerr.ErrStorage, "create storage path [%s]: %s", o.cfg.Storage.Path, err)
		}

		p, err := boltstore.New(filepath.Join(o.cfg.Storage.Path, config.BoltFileName))
		if err != nil {
			return false, err
		}

		o.provider = p
	default:
		o.provider = memstore.New()
	}

	return true, nil
}
