package fhe

import (
	"context"
	"fmt"
	"sync"
)

// Instance is an encryption service instance bound to one network.
type Instance interface {
	CreateEncryptedInput(contract, user string) Input
}

// Input stages values for a single encryption.
type Input interface {
	Add32(v uint32) Input
	Add64(v uint64) Input
	Encrypt(ctx context.Context) (*Encrypted, error)
}

type instance struct {
	relayer Relayer
	chainID uint64
}

// NewLocalInstance wraps a relayer into an Instance.
func NewLocalInstance(relayer Relayer, chainID uint64) Instance {
	return &instance{relayer: relayer, chainID: chainID}
}

func (i *instance) CreateEncryptedInput(contract, user string) Input {
	return &input{relayer: i.relayer, contract: contract, user: user}
}

type input struct {
	relayer  Relayer
	contract string
	user     string
	values   []Value
}

func (in *input) Add32(v uint32) Input {
	in.values = append(in.values, Value{Bits: 32, Value: uint64(v)})
	return in
}

func (in *input) Add64(v uint64) Input {
	in.values = append(in.values, Value{Bits: 64, Value: v})
	return in
}

func (in *input) Encrypt(ctx context.Context) (*Encrypted, error) {
	if len(in.values) == 0 {
		return nil, ErrEmptyInput
	}
	return in.relayer.EncryptInput(ctx, in.contract, in.user, in.values)
}

// Params configure instance construction.
type Params struct {
	// MockChains maps network ids to relayer endpoints.
	MockChains map[uint64]string
	// Probe fetches relayer metadata from an endpoint.
	Probe func(ctx context.Context, url string) (*Metadata, error)
	// Dial returns a relayer client for an endpoint.
	Dial func(url string) Relayer
}

// NewInstance builds an instance for network. Only networks listed in
// MockChains are served; everything else fails with RELAYER_UNAVAILABLE.
// A cancelled ctx aborts construction between steps and returns ctx.Err().
func NewInstance(ctx context.Context, network uint64, p Params) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	url, ok := p.MockChains[network]
	if !ok || url == "" {
		return nil, &Error{Code: CodeRelayerUnavailable, Msg: fmt.Sprintf("no relayer for network %d", network)}
	}

	meta, err := p.Probe(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Code: CodeRelayerUnavailable, Msg: "relayer metadata unavailable", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if meta.ChainID != network {
		return nil, &Error{Code: CodeChainMismatch, Msg: fmt.Sprintf("relayer serves network %d, want %d", meta.ChainID, network)}
	}

	return NewLocalInstance(p.Dial(url), network), nil
}

// LoaderStatus is the state of a Loader.
type LoaderStatus string

const (
	StatusIdle    LoaderStatus = "idle"
	StatusLoading LoaderStatus = "loading"
	StatusReady   LoaderStatus = "ready"
	StatusError   LoaderStatus = "error"
)

// Loader owns the caller-visible instance state. A cancelled or superseded
// construction never publishes its outcome.
type Loader struct {
	mu       sync.Mutex
	build    func(ctx context.Context) (Instance, error)
	instance Instance
	status   LoaderStatus
	err      error
	gen      uint64
	cancel   context.CancelFunc
}

func NewLoader(build func(ctx context.Context) (Instance, error)) *Loader {
	return &Loader{build: build, status: StatusIdle}
}

// Load runs construction synchronously and returns the ready instance.
// A cancelled construction restores the state seen before Load started.
func (l *Loader) Load(ctx context.Context) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.gen++
	gen := l.gen
	l.cancel = cancel
	prevStatus, prevErr := l.status, l.err
	l.status = StatusLoading
	l.mu.Unlock()

	inst, err := l.build(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	defer cancel()

	if gen != l.gen || ctx.Err() != nil {
		if gen == l.gen {
			l.status, l.err = prevStatus, prevErr
			l.cancel = nil
		}
		if err == nil {
			err = context.Canceled
		}
		return nil, err
	}

	l.cancel = nil
	if err != nil {
		l.instance = nil
		l.status = StatusError
		l.err = err
		return nil, err
	}

	l.instance = inst
	l.status = StatusReady
	l.err = nil
	return inst, nil
}

// Refresh aborts any in-flight construction and drops the instance.
func (l *Loader) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.instance = nil
	l.status = StatusIdle
	l.err = nil
}

func (l *Loader) Instance() Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.instance
}

func (l *Loader) Status() (LoaderStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.err
}
