/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wallet keeps Ed25519 key material sealed under a key derived from the wallet
// credentials.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/trustbloc/microledger-go/pkg/api/mlerr"
	"github.com/trustbloc/microledger-go/pkg/crypto"
	"github.com/trustbloc/microledger-go/pkg/internal/log"
	"github.com/trustbloc/microledger-go/pkg/util/edsigner"
)

var logger = log.New("microledger-wallet")

const (
	sealVersion byte = 0x01
	saltSize         = 16

	argonTime    = 1
	argonMemory  = 32 * 1024
	argonThreads = 2
	keySize      = chacha20poly1305.KeySize
)

var credentialsCheck = []byte("microledger wallet")

// ErrWalletExists is returned when creating a wallet that already exists.
var ErrWalletExists = errors.New("wallet already exists")

// ErrWalletNotFound is returned when opening a wallet that does not exist.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrInvalidCredentials is returned when the credentials do not open the wallet.
var ErrInvalidCredentials = errors.New("invalid wallet credentials")

// Config identifies a wallet.
type Config struct {
	ID string
}

// Credentials unlock a wallet.
type Credentials struct {
	Key string
}

type record struct {
	salt  []byte
	check []byte
	keys  map[string][]byte
}

// Service holds wallets.
type Service struct {
	mutex   sync.RWMutex
	wallets map[string]*record
}

// NewService returns an empty wallet service.
func NewService() *Service {
	return &Service{wallets: make(map[string]*record)}
}

// CreateWallet creates a wallet protected by the credentials.
func (s *Service) CreateWallet(cfg Config, creds Credentials) error {
	if cfg.ID == "" {
		return errors.New("wallet id is required")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.wallets[cfg.ID]; ok {
		return errors.Wrapf(ErrWalletExists, "[%s]", cfg.ID)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(err, "generate salt")
	}

	check, err := seal(deriveKey(creds, salt), credentialsCheck, []byte(cfg.ID))
	if err != nil {
		return err
	}

	s.wallets[cfg.ID] = &record{salt: salt, check: check, keys: make(map[string][]byte)}

	logger.Debugf("Created wallet [%s]", cfg.ID)

	return nil
}

// OpenWallet opens a wallet.
func (s *Service) OpenWallet(cfg Config, creds Credentials) (*Wallet, error) {
	s.mutex.RLock()
	rec, ok := s.wallets[cfg.ID]
	s.mutex.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrWalletNotFound, "[%s]", cfg.ID)
	}

	key := deriveKey(creds, rec.salt)

	if _, err := open(key, rec.check, []byte(cfg.ID)); err != nil {
		return nil, errors.Wrapf(ErrInvalidCredentials, "[%s]", cfg.ID)
	}

	return &Wallet{id: cfg.ID, key: key, rec: rec, service: s}, nil
}

// Wallet is an open wallet.
type Wallet struct {
	id      string
	key     []byte
	rec     *record
	service *Service
}

// ID returns the wallet id.
func (w *Wallet) ID() string {
	return w.id
}

// AddKey stores the secret of verkey.
func (w *Wallet) AddKey(verkey string, secret ed25519.PrivateKey) error {
	actual, err := edsigner.New(secret).Verkey()
	if err != nil {
		return err
	}

	if actual != verkey {
		return errors.Errorf("secret does not belong to verkey [%s]", verkey)
	}

	sealed, err := seal(w.key, secret, w.aad(verkey))
	if err != nil {
		return err
	}

	w.service.mutex.Lock()
	defer w.service.mutex.Unlock()

	w.rec.keys[verkey] = sealed

	return nil
}

// GetKey returns the secret of verkey.
func (w *Wallet) GetKey(verkey string) (ed25519.PrivateKey, error) {
	w.service.mutex.RLock()
	sealed, ok := w.rec.keys[verkey]
	w.service.mutex.RUnlock()

	if !ok {
		return nil, errors.Wrapf(mlerr.ErrUnknownKey, "key [%s] not in wallet [%s]", verkey, w.id)
	}

	secret, err := open(w.key, sealed, w.aad(verkey))
	if err != nil {
		return nil, errors.Wrapf(err, "open key [%s]", verkey)
	}

	return secret, nil
}

// CreateKey creates and stores a key. An empty seed creates a random key.
func (w *Wallet) CreateKey(seed string) (string, error) {
	k, err := crypto.CreateKey(seed)
	if err != nil {
		return "", err
	}

	if err := w.AddKey(k.Verkey, k.Secret); err != nil {
		return "", err
	}

	return k.Verkey, nil
}

// Sign signs msg with the key of verkey.
func (w *Wallet) Sign(verkey string, msg []byte) ([]byte, error) {
	secret, err := w.GetKey(verkey)
	if err != nil {
		return nil, err
	}

	return crypto.Sign(secret, msg)
}

// Verkeys returns the stored verkeys in lexicographic order.
func (w *Wallet) Verkeys() []string {
	w.service.mutex.RLock()
	defer w.service.mutex.RUnlock()

	verkeys := make([]string, 0, len(w.rec.keys))
	for vk := range w.rec.keys {
		verkeys = append(verkeys, vk)
	}

	sort.Strings(verkeys)

	return verkeys
}

func (w *Wallet) aad(verkey string) []byte {
	return []byte(w.id + "/" + verkey)
}

func deriveKey(creds Credentials, salt []byte) []byte {
	return argon2.IDKey([]byte(creds.Key), salt, argonTime, argonMemory, argonThreads, keySize)
}

// seal encrypts with XChaCha20-Poly1305 into version || nonce || ciphertext.
func seal(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "create cipher")
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}

	out := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	out[0] = sealVersion
	copy(out[1:], nonce[:])

	return aead.Seal(out, nonce[:], plaintext, append([]byte{sealVersion}, aad...)), nil
}

func open(key, sealed, aad []byte) ([]byte, error) {
	if len(sealed) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, errors.New("sealed value too short")
	}

	if sealed[0] != sealVersion {
		return nil, errors.Errorf("unsupported seal version %d", sealed[0])
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "create cipher")
	}

	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]

	return aead.Open(nil, nonce, sealed[1+chacha20poly1305.NonceSizeX:], append([]byte{sealVersion}, aad...))
}
