package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/gtdvccc/raylp/pkg"
	"github.com/gtdvccc/raylp/pkg/events"
	"github.com/gtdvccc/raylp/pkg/journal"
	"github.com/gtdvccc/raylp/pkg/journal/memory"
	"github.com/gtdvccc/raylp/pkg/sol"
)

// Transport is the remote node as the executor sees it. *sol.Client implements it.
type Transport interface {
	GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*rpc.Account, error)
	LatestBlockhash(ctx context.Context) (sol.Blockhash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*sol.SimulationResult, error)
	WaitForConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (sol.ConfirmationStatus, error)
}

var _ Transport = (*sol.Client)(nil)

// Executor runs operations: one batched read, one signed transaction, sent once.
type Executor struct {
	transport      Transport
	payer          sol.Signer
	signers        []sol.Signer
	journal        journal.Store
	sink           events.Sink
	simulate       bool
	confirmTimeout time.Duration
}

type Option func(*Executor)

// WithJournal sets where submissions are recorded. Defaults to an in-memory store.
func WithJournal(store journal.Store) Option {
	return func(e *Executor) { e.journal = store }
}

func WithSink(sink events.Sink) Option {
	return func(e *Executor) { e.sink = sink }
}

// WithSimulate makes Execute simulate instead of sending.
func WithSimulate(simulate bool) Option {
	return func(e *Executor) { e.simulate = simulate }
}

// WithConfirmTimeout bounds how long Execute waits for a terminal status.
func WithConfirmTimeout(d time.Duration) Option {
	return func(e *Executor) { e.confirmTimeout = d }
}

// WithSigners adds co-signers besides the fee payer.
func WithSigners(signers ...sol.Signer) Option {
	return func(e *Executor) { e.signers = append(e.signers, signers...) }
}

// New creates an executor that pays fees and signs as payer. An executor
// with a nil payer can only Reconcile.
func New(transport Transport, payer sol.Signer, opts ...Option) *Executor {
	e := &Executor{
		transport:      transport,
		payer:          payer,
		journal:        memory.NewStore(),
		sink:           events.Nop,
		confirmTimeout: 90 * time.Second,
	}
	if payer != nil {
		e.signers = append(e.signers, payer)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes what Execute did.
type Result struct {
	Kind         pkg.OperationKind
	Pool         string
	Signature    solana.Signature
	Status       journal.Status
	Instructions int
	Simulation   *sol.SimulationResult
}

// Execute fetches the operation's accounts, builds and signs its
// instructions as a single transaction, records it and sends it once.
//
// A pending submission for the same protocol, kind and pool blocks a new one
// with ErrPendingSubmission until Reconcile resolves it.
func (e *Executor) Execute(ctx context.Context, op pkg.Operation) (*Result, error) {
	if e.payer == nil {
		return nil, errorsmod.Wrap(pkg.ErrConfig, "executor has no fee payer")
	}
	res := &Result{Kind: op.Kind(), Pool: op.GetID()}
	base := events.Event{Operation: string(op.Kind()), Pool: res.Pool}

	if !e.simulate {
		prev, err := e.journal.FindPending(ctx, string(op.ProtocolName()), string(op.Kind()), res.Pool)
		switch {
		case err == nil:
			return nil, errorsmod.Wrapf(pkg.ErrPendingSubmission, "%s on %s: signature %s", op.Kind(), res.Pool, prev.Signature)
		case !errors.Is(err, journal.ErrNotFound):
			return nil, fmt.Errorf("check journal: %w", err)
		}
	}

	keys := op.StateAccounts()
	accounts, err := e.transport.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, err
	}
	e.emit(base, events.KindFetched, map[string]interface{}{"accounts": len(keys)})

	instrs, err := op.BuildInstructions(ctx, e.payer.PublicKey(), accounts)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op.Kind(), err)
	}
	res.Instructions = len(instrs)
	e.emit(base, events.KindBuilt, map[string]interface{}{"instructions": len(instrs)})

	bh, err := e.transport.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := sol.SignTransaction(bh.Hash, e.signers, instrs...)
	if err != nil {
		return nil, err
	}
	res.Signature = tx.Signatures[0]
	base.Signature = res.Signature.String()

	if e.simulate {
		sim, err := e.transport.SimulateTransaction(ctx, tx)
		res.Simulation = sim
		fields := map[string]interface{}{}
		if sim != nil {
			fields["units_consumed"] = sim.UnitsConsumed
			fields["logs"] = len(sim.Logs)
		}
		e.emitErr(base, events.KindSimulated, fields, err)
		return res, err
	}

	sub := &journal.Submission{
		Signature:            base.Signature,
		Protocol:             string(op.ProtocolName()),
		Kind:                 string(op.Kind()),
		Pool:                 res.Pool,
		Blockhash:            bh.Hash.String(),
		LastValidBlockHeight: bh.LastValidBlockHeight,
		Status:               journal.StatusPending,
	}
	if err := e.journal.Record(ctx, sub); err != nil {
		return nil, fmt.Errorf("record submission: %w", err)
	}

	if _, err := e.transport.SendTransaction(ctx, tx); err != nil {
		res.Status = journal.StatusPending
		if sol.Rejected(err) {
			res.Status = journal.StatusFailed
			if uerr := e.journal.UpdateStatus(ctx, sub.Signature, journal.StatusFailed, err.Error()); uerr != nil {
				return res, errors.Join(err, uerr)
			}
		}
		e.emitErr(base, events.KindFailed, nil, err)
		return res, err
	}
	e.emit(base, events.KindSubmitted, map[string]interface{}{"last_valid_block_height": bh.LastValidBlockHeight})

	res.Status, err = e.await(ctx, sub, base)
	return res, err
}

// Reconcile polls every pending submission until it reaches a terminal status
// and records the outcome. It returns the submissions it resolved.
func (e *Executor) Reconcile(ctx context.Context) ([]*journal.Submission, error) {
	pending, err := e.journal.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	var (
		resolved []*journal.Submission
		errs     []error
	)
	for _, sub := range pending {
		base := events.Event{Operation: sub.Kind, Pool: sub.Pool, Signature: sub.Signature}
		status, err := e.await(ctx, sub, base)
		if status == journal.StatusPending {
			errs = append(errs, err)
			continue
		}
		sub.Status = status
		if err != nil {
			sub.Error = err.Error()
		}
		resolved = append(resolved, sub)
		e.emit(base, events.KindReconciled, map[string]interface{}{"status": string(status)})
	}
	return resolved, errors.Join(errs...)
}

// await waits for sub to land and records the terminal status. A timeout
// leaves it pending.
func (e *Executor) await(ctx context.Context, sub *journal.Submission, base events.Event) (journal.Status, error) {
	sig, err := solana.SignatureFromBase58(sub.Signature)
	if err != nil {
		return journal.StatusPending, errorsmod.Wrapf(pkg.ErrInvalidAddress, "signature %q: %v", sub.Signature, err)
	}

	wctx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()
	confirmation, waitErr := e.transport.WaitForConfirmation(wctx, sig, sub.LastValidBlockHeight)

	var (
		status journal.Status
		kind   events.Kind
		detail string
	)
	switch confirmation {
	case sol.StatusConfirmed:
		status, kind = journal.StatusConfirmed, events.KindConfirmed
	case sol.StatusFailed:
		status, kind = journal.StatusFailed, events.KindFailed
	case sol.StatusExpired:
		status, kind = journal.StatusExpired, events.KindExpired
	default:
		return journal.StatusPending, fmt.Errorf("submission %s still pending, run reconcile: %w", sub.Signature, waitErr)
	}
	if waitErr != nil {
		detail = waitErr.Error()
	}

	if err := e.journal.UpdateStatus(ctx, sub.Signature, status, detail); err != nil {
		return status, errors.Join(waitErr, fmt.Errorf("update journal: %w", err))
	}
	e.emitErr(base, kind, nil, waitErr)
	return status, waitErr
}

func (e *Executor) emit(base events.Event, kind events.Kind, fields map[string]interface{}) {
	e.emitErr(base, kind, fields, nil)
}

func (e *Executor) emitErr(base events.Event, kind events.Kind, fields map[string]interface{}, err error) {
	ev := base
	ev.Kind = kind
	ev.Fields = fields
	ev.Err = err
	e.sink.Emit(ev)
}
