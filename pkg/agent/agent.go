/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package agent implements an agent that manages the microledger of its DID and keeps
// mirrors of the microledgers of the peers it connects with.
//
// An agent is driven cooperatively: the transport fills its inbox and ProcessInbox
// drains it, integrating received ledger updates and queuing replies on the outbox.
package agent

import (
	"crypto/rand"
	"sort"
	"sync"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/api/txn"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/diddoc"
	"github.com/trustbloc/microledger-go/pkg/document"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/microledger"
	"github.com/trustbloc/microledger-go/pkg/protocol"
	"github.com/trustbloc/microledger-go/pkg/storage"
	"github.com/trustbloc/microledger-go/pkg/transport"
	"github.com/trustbloc/microledger-go/pkg/wallet"
)

var logger = log.New("microledger-agent")

const (
	peerIDSize     = 6
	credentialSize = 32
)

// Agent holds the microledger of its DID and the mirrors of its peers' microledgers.
type Agent struct {
	mutex sync.Mutex

	did    string
	verkey string
	peerID string

	wallet     *wallet.Wallet
	verifier   *crypto.Service
	provider   storage.Provider
	ownsStore  bool
	mlOpts     *microledger.Options
	integrator *protocol.Integrator
	renderer   *document.Renderer
	peer       *transport.Peer

	ledgers   map[string]*microledger.Microledger
	remoteDID string
	divergent map[string]struct{}
	errs      []error
	messages  []*protocol.Message
}

// New creates the agent of did. Its key is created from seed (random when empty) and
// kept in the agent's wallet. The microledger of did is opened, and replayed when the
// storage already holds it.
func New(did, seed string, opts ...Option) (*Agent, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	ownsStore, err := o.resolve()
	if err != nil {
		return nil, err
	}

	a, err := newAgent(did, seed, o)
	if err != nil {
		if ownsStore {
			if e := o.provider.Close(); e != nil {
				logger.Warn("Failed to close storage", log.WithError(e))
			}
		}

		return nil, err
	}

	a.ownsStore = ownsStore

	return a, nil
}

func newAgent(did, seed string, o *options) (*Agent, error) {
	peerID := o.peerID
	if peerID == "" {
		id, err := randomID(peerIDSize)
		if err != nil {
			return nil, err
		}

		peerID = id
	}

	w := o.wallet
	if w == nil {
		nw, err := newWallet(peerID)
		if err != nil {
			return nil, err
		}

		w = nw
	}

	verkey, err := w.CreateKey(seed)
	if err != nil {
		return nil, errors.WithMessage(err, "create agent key")
	}

	verifier := crypto.New()
	mlOpts := microledger.CreateOptions(o.provider, peerID,
		microledger.WithBuilder(o.builder), microledger.WithVerifier(verifier))

	ml, err := microledger.New(did, mlOpts)
	if err != nil {
		return nil, err
	}

	logger.Info("Created agent", log.WithDID(did), log.WithVerkey(verkey), log.WithPeerID(peerID))

	return &Agent{
		did:        did,
		verkey:     verkey,
		peerID:     peerID,
		wallet:     w,
		verifier:   verifier,
		provider:   o.provider,
		mlOpts:     mlOpts,
		integrator: protocol.NewIntegrator(mlOpts),
		renderer:   document.NewRenderer(document.WithMethod(o.cfg.Resolution.Method)),
		peer:       transport.NewPeer(peerID),
		ledgers:    map[string]*microledger.Microledger{did: ml},
		divergent:  make(map[string]struct{}),
	}, nil
}

func newWallet(id string) (*wallet.Wallet, error) {
	key, err := randomID(credentialSize)
	if err != nil {
		return nil, err
	}

	s := wallet.NewService()
	cfg := wallet.Config{ID: id}
	creds := wallet.Credentials{Key: key}

	if err := s.CreateWallet(cfg, creds); err != nil {
		return nil, err
	}

	return s.OpenWallet(cfg, creds)
}

func randomID(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate random bytes")
	}

	return base58.Encode(b), nil
}

// Close releases the storage opened from the agent's config.
func (a *Agent) Close() error {
	if !a.ownsStore {
		return nil
	}

	return a.provider.Close()
}

// PeerID returns the transport name of the agent.
func (a *Agent) PeerID() string {
	return a.peerID
}

// Peer returns the transport handle of the agent.
func (a *Agent) Peer() *transport.Peer {
	return a.peer
}

// Verkey returns the verkey of the agent's key.
func (a *Agent) Verkey() string {
	return a.verkey
}

// ManagingDID returns the DID the agent manages.
func (a *Agent) ManagingDID() string {
	return a.did
}

// RemoteDID returns the DID of the most recently connected peer.
func (a *Agent) RemoteDID() string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.remoteDID
}

// DIDs returns the DIDs of all held microledgers in lexicographic order.
func (a *Agent) DIDs() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	dids := make([]string, 0, len(a.ledgers))
	for did := range a.ledgers {
		dids = append(dids, did)
	}

	sort.Strings(dids)

	return dids
}

// HasMicroledger returns true if the agent holds the microledger of did.
func (a *Agent) HasMicroledger(did string) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	_, ok := a.ledgers[did]

	return ok
}

// Microledger returns the microledger of did.
func (a *Agent) Microledger(did string) (*microledger.Microledger, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.ledger(did)
}

func (a *Agent) ledger(did string) (*microledger.Microledger, error) {
	ml, ok := a.ledgers[did]
	if !ok {
		return nil, errors.Wrapf(mlerr.ErrUnknownDID, "no microledger for [%s]", did)
	}

	return ml, nil
}

// DidDoc returns a snapshot of the DID document of did.
func (a *Agent) DidDoc(did string) (*diddoc.DidDoc, error) {
	ml, err := a.Microledger(did)
	if err != nil {
		return nil, err
	}

	return ml.DidDoc(), nil
}

// Resolve renders the DID document of did with its resolution metadata.
func (a *Agent) Resolve(did string) (*document.ResolutionResult, error) {
	ml, err := a.Microledger(did)
	if err != nil {
		return nil, err
	}

	return a.renderer.Resolve(ml)
}

// Deliver puts msg in the inbox of the agent.
func (a *Agent) Deliver(msg string) {
	a.peer.Deliver(msg)
}

// IsDivergent returns true if a peer claimed a root for did that the local mirror does
// not have. Updates of a divergent mirror are rejected. The managing DID is never
// divergent.
func (a *Agent) IsDivergent(did string) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	_, ok := a.divergent[did]

	return ok
}

// Errors returns the errors of the messages rejected by ProcessInbox or Receive.
func (a *Agent) Errors() []error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	errs := make([]error, len(a.errs))
	copy(errs, a.errs)

	return errs
}

// Messages returns the accepted signed messages that carried no ledger update.
func (a *Agent) Messages() []*protocol.Message {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	msgs := make([]*protocol.Message, len(a.messages))
	copy(msgs, a.messages)

	return msgs
}

// AddGenesis appends txns to the agent's own microledger as trusted local txns.
func (a *Agent) AddGenesis(txns []string) (uint64, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.ledgers[a.did].AddMultiple(txns)
}

// AddMirror creates the microledger of another DID from txns obtained out of band and
// makes it the remote DID.
func (a *Agent) AddMirror(did string, txns []string) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if _, ok := a.ledgers[did]; ok {
		return errors.Errorf("microledger of [%s] already exists", did)
	}

	ml, err := microledger.New(did, a.mlOpts)
	if err != nil {
		return err
	}

	if ml.Size() > 0 {
		return errors.Errorf("storage already holds a microledger of [%s]", did)
	}

	if _, err := ml.AddMultiple(txns); err != nil {
		return err
	}

	a.ledgers[did] = ml
	a.remoteDID = did

	return nil
}

// AddKeyTxn appends a key txn to the microledger of did, signed with the agent's key.
// Empty authorizations revoke the key.
func (a *Agent) AddKeyTxn(did, verkey string, authorizations []txn.AuthzFlag) (uint64, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	ml, err := a.ledger(did)
	if err != nil {
		return 0, err
	}

	return ml.AddKeyTxn(verkey, authorizations, a.signerContext())
}

// AddEndpointTxn appends an endpoint txn to the microledger of did, signed with the
// agent's key.
func (a *Agent) AddEndpointTxn(did, verkey, address string) (uint64, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	ml, err := a.ledger(did)
	if err != nil {
		return 0, err
	}

	return ml.AddEndpointTxn(verkey, address, a.signerContext())
}

func (a *Agent) signerContext() *microledger.SignerContext {
	return &microledger.SignerContext{Signer: a.wallet, Verkey: a.verkey}
}

// SignMessage signs payload with the agent's key.
func (a *Agent) SignMessage(payload string) (*protocol.Message, error) {
	return protocol.SignMessage(a.wallet, a.did, a.verkey, payload)
}

// NewLedgerUpdateMsg returns a signed message carrying the txns of did from seq from.
func (a *Agent) NewLedgerUpdateMsg(did string, from uint64) (string, error) {
	a.mutex.Lock()
	ml, err := a.ledger(did)
	a.mutex.Unlock()

	if err != nil {
		return "", err
	}

	lu, err := protocol.NewLedgerUpdate(ml, from)
	if err != nil {
		return "", err
	}

	payload, err := protocol.Marshal(lu)
	if err != nil {
		return "", err
	}

	m, err := a.SignMessage(payload)
	if err != nil {
		return "", err
	}

	return protocol.Marshal(m)
}

// GetNewConnectionMsg returns a connection carrying the agent's whole microledger.
func (a *Agent) GetNewConnectionMsg() (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	lu, err := protocol.NewLedgerUpdate(a.ledgers[a.did], 1)
	if err != nil {
		return "", err
	}

	c, err := protocol.NewConnection(a.peerID, lu)
	if err != nil {
		return "", err
	}

	return protocol.Marshal(c)
}

// Send queues msg for delivery to peerID.
func (a *Agent) Send(msg, peerID string) {
	logger.Debug("Queuing message", log.WithPeerID(peerID))

	a.peer.AddToOutbox(peerID, msg)
}
