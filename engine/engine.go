// Package engine implements the command-response correlator and I/O
// coordination layer (C6) described in spec §4.6, built on top of the RX
// line framer (C2, rxframer.go), the TX byte source (C3, txsource.go), the
// unsolicited dispatcher (C5, dispatch.go) and the concurrency primitives
// wrapper (C8, package sync2).
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/northlake-iot/atdrv/at"
	"github.com/northlake-iot/atdrv/engine/sync2"
)

// result is what the RX consumer task publishes to the command-result
// queue when it reaches a terminal classification (§4.6 step 2c).
type result struct {
	cmd     at.CommandID
	class   at.Classification
	payload string
}

// Engine is the command engine (C6): it serialises command transmissions,
// coordinates the three rendezvous points (line-available, classification,
// final completion) described in §4.6, and drives the prompt dialogue.
type Engine struct {
	table  *at.Table
	driver ByteDriver
	logger *slog.Logger

	rxCapacity  int
	exceptional byte
	strict      bool

	rx         *RXFramer
	tx         *TXSource
	rxSignal   *sync2.Signal
	classifier *at.Classifier
	dispatcher *Dispatcher

	// accumulator and awaited are touched only by the RX consumer task
	// (§5: "no locking required for them inter se").
	accumulator at.Accumulator
	awaited     at.CommandID

	awaitedQueue *sync2.OverwriteQueue[at.CommandID]
	resultQueue  *sync2.OverwriteQueue[result]

	sendLock   *semaphore.Weighted
	registryMu sync2.Mutex

	promptValid   bool
	promptMessage string
	promptEnd     at.EndPolicy

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewEngine builds an Engine over table and driver. The engine does not
// start its RX consumer task until Init is called.
func NewEngine(table *at.Table, driver ByteDriver, opts ...Option) *Engine {
	e := &Engine{
		table:       table,
		driver:      driver,
		logger:      slog.Default(),
		rxCapacity:  256,
		exceptional: '>',
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.rxSignal = sync2.NewSignal()
	e.rx = NewRXFramer(e.rxCapacity, e.exceptional, e.rxSignal)
	e.tx = NewTXSource()
	e.dispatcher = NewDispatcher(table)
	e.classifier = &at.Classifier{
		Table:              table,
		Strict:             e.strict,
		IsKnownBareMessage: e.dispatcher.HasBareMatch,
	}
	e.awaited = at.None
	e.awaitedQueue = sync2.NewOverwriteQueue[at.CommandID]()
	e.resultQueue = sync2.NewOverwriteQueue[result]()
	e.sendLock = semaphore.NewWeighted(1)
	return e
}

// Init starts the RX consumer task (§5.3 "Lifecycle"). It may be called
// before any scheduler-equivalent is running; handler registration already
// works in that state (§4.5, §9).
func (e *Engine) Init() error {
	if e.running.Swap(true) {
		return ErrAlreadyRunning
	}
	e.wg.Add(1)
	go e.rxConsumerLoop()
	return nil
}

// Deinit tears down the RX consumer task. After Deinit, the engine must not
// be reused.
func (e *Engine) Deinit() error {
	if !e.running.Swap(false) {
		return ErrNotRunning
	}
	close(e.stopCh)
	e.wg.Wait()
	return nil
}

// RegisterUnsolicited registers a handler for unsolicited lines of the form
// "+<name(id)>:...". Per §4.5/§9, the registry lock is only taken once the
// RX consumer task is running; registrations made before Init proceed
// lock-free, since nothing else touches the registry yet.
func (e *Engine) RegisterUnsolicited(id at.CommandID, fn func(payload string) at.Policy) {
	if e.running.Load() {
		release := e.registryMu.Guard()
		defer release()
	}
	e.dispatcher.RegisterExtended(id, fn)
}

// RegisterUnsolicitedMessage registers a handler for bare unsolicited
// notifications that start with message (e.g. "RING"). fn receives the
// full matched line.
func (e *Engine) RegisterUnsolicitedMessage(message string, fn func(line string) at.Policy) {
	if e.running.Load() {
		release := e.registryMu.Guard()
		defer release()
	}
	e.dispatcher.RegisterBare(message, fn)
}

// Send issues a basic or extended command with no payload and waits for
// its terminal result (§6).
func (e *Engine) Send(ctx context.Context, id at.CommandID, typ at.CommandType, timeout time.Duration) (string, error) {
	return e.sendAndMap(ctx, id, typ, "", timeout)
}

// SendWrite issues a WRITE command carrying payload and waits for its
// terminal result (§6).
func (e *Engine) SendWrite(ctx context.Context, id at.CommandID, payload string, timeout time.Duration) (string, error) {
	return e.sendAndMap(ctx, id, at.Write, payload, timeout)
}

// SendPrompted issues a command that solicits an inline prompt reply
// (§4.6 "Prompt dialogue"). The prompt message and end-policy are recorded
// before the primary frame is transmitted, so a PROMPT line arriving any
// time after that point — even a fast peripheral's immediate reply — finds
// the store already populated.
func (e *Engine) SendPrompted(ctx context.Context, id at.CommandID, payload, promptMessage string, end at.EndPolicy, timeout time.Duration) error {
	release := e.registryMu.Guard()
	e.promptMessage = promptMessage
	e.promptEnd = end
	e.promptValid = true
	release()

	class, data, err := e.send(ctx, id, at.Write, payload, timeout)
	if err != nil {
		return err
	}
	return classificationToErr(class, data)
}

func (e *Engine) sendAndMap(ctx context.Context, id at.CommandID, typ at.CommandType, payload string, timeout time.Duration) (string, error) {
	class, data, err := e.send(ctx, id, typ, payload, timeout)
	if err != nil {
		return "", err
	}
	if err := classificationToErr(class, data); err != nil {
		return data, err
	}
	return data, nil
}

func classificationToErr(class at.Classification, data string) error {
	switch class {
	case at.TerminalOK:
		return nil
	case at.TerminalError:
		return ErrModemError
	case at.TerminalCMEError:
		return fmt.Errorf("%w: %s", ErrCMEError, strings.TrimSpace(data))
	default:
		return fmt.Errorf("engine: unexpected terminal classification %s", class)
	}
}

// send implements §4.6's send algorithm: acquire the serialising lock,
// hand off the awaited command, clear and reload the TX source, enable the
// TX interrupt, then wait on the command-result queue, discarding any
// stale (mismatched) result left over from a prior, timed-out command.
func (e *Engine) send(ctx context.Context, id at.CommandID, typ at.CommandType, payload string, timeout time.Duration) (at.Classification, string, error) {
	if err := e.sendLock.Acquire(ctx, 1); err != nil {
		return 0, "", ErrTimeout
	}
	defer e.sendLock.Release(1)

	e.awaitedQueue.Overwrite(id)

	e.tx.Clean() // §9: call site preserved — safe because the previous send has already completed.
	e.tx.PushString(e.table.FormatPrefix(id, typ))
	if payload != "" {
		e.tx.PushString(payload)
	}
	e.tx.PushString(at.CRLF)
	e.driver.EnableTXInterrupt()

	// timeout is honored literally, including zero — a caller passing a
	// zero timeout gets TIMEOUT when no result is queued (§8 scenario S7);
	// if a result is already queued, either it or TIMEOUT may be returned.
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		res, err := e.resultQueue.Receive(waitCtx)
		if err != nil {
			return 0, "", ErrTimeout
		}
		if res.cmd != id {
			e.logger.Debug("engine: discarding stale result", "awaited", id, "got", res.cmd)
			continue
		}
		return res.class, res.payload, nil
	}
}

// rxConsumerLoop is the RX consumer task described in §4.6: it blocks on
// the lines-available signal, then drains every pending line before
// waiting again.
func (e *Engine) rxConsumerLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.rxSignal.C():
		}
		for {
			line, ok := e.rx.PopLine()
			if !ok {
				break
			}
			e.handleLine(string(line))
		}
	}
}

func (e *Engine) handleLine(line string) {
	if newID, ok := e.awaitedQueue.TryReceive(); ok {
		e.awaited = newID
		e.accumulator.Reset()
	}

	release := e.registryMu.Guard()
	class, seg := e.classifier.Classify(line, e.awaited)

	switch class {
	case at.DataForAwaited, at.TerminalCMEError:
		e.accumulator.Append(seg)
	}

	var publish *result
	if class == at.TerminalOK || class == at.TerminalError || class == at.TerminalCMEError {
		publish = &result{cmd: e.awaited, class: class, payload: e.accumulator.String()}
		e.accumulator.Reset()
		e.awaited = at.None
	}

	var emitPrompt bool
	var promptMsg string
	var promptEnd at.EndPolicy
	if class == at.Prompt {
		if e.promptValid {
			emitPrompt = true
			promptMsg = e.promptMessage
			promptEnd = e.promptEnd
			e.promptValid = false
		} else {
			e.logger.Debug("engine: dropping PROMPT with no stored prompt message")
		}
	}

	var dispatch bool
	if class == at.Unsolicited {
		dispatch = true
	}
	release()

	if publish != nil {
		e.resultQueue.Overwrite(*publish)
	}
	if emitPrompt {
		e.sendPromptReply(promptMsg, promptEnd)
	}
	if dispatch {
		release2 := e.registryMu.Guard()
		e.dispatcher.Dispatch(line)
		release2()
	}
	// Echo: no side effects (§4.6 step f).
}

func (e *Engine) sendPromptReply(message string, end at.EndPolicy) {
	e.tx.PushString(message)
	if end == at.EndCtrlZ {
		e.tx.PushString(string([]byte{at.CtrlZ}) + at.CRLF)
	} else {
		e.tx.PushString(at.CRLF)
	}
	e.driver.EnableTXInterrupt()
}
