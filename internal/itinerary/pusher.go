package itinerary

import (
	"context"
	"log"
	"sync"
	"time"
)

// syncOp is one queued remote operation: a full-collection push, or a
// targeted delete when deleteID is set.
type syncOp struct {
	snap     Snapshot
	deleteID string
}

// pusher ships mutations to the remote store from a single background
// worker, so remote latency never blocks a mutation. Consecutive pushes
// coalesce down to the newest snapshot: a stale full-state write can never
// land after a newer one and regress the remote. Deletes keep their queue
// position relative to surrounding pushes.
//
// Offline or failed operations are dropped, not retried. The next
// mutation pushes the full collection again, which heals any gap.
type pusher struct {
	remote  RemoteStore
	net     ConnectivitySignal
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	queue   []syncOp
	settled chan struct{} // closed whenever the queue is fully drained

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newPusher(remote RemoteStore, net ConnectivitySignal, logger *log.Logger, timeout time.Duration) *pusher {
	p := &pusher{
		remote:  remote,
		net:     net,
		logger:  logger,
		timeout: timeout,
		settled: closedChan(),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// enqueuePush queues a full-collection upsert. If the newest queued op is
// already a push it is replaced in place: only the latest snapshot matters.
func (p *pusher) enqueuePush(snap Snapshot) {
	p.mu.Lock()
	if n := len(p.queue); n > 0 && p.queue[n-1].deleteID == "" {
		p.queue[n-1].snap = snap
	} else {
		p.queue = append(p.queue, syncOp{snap: snap})
	}
	p.markBusyLocked()
	p.mu.Unlock()
	p.signal()
}

// enqueueDelete queues a targeted delete. Deletes are never coalesced.
func (p *pusher) enqueueDelete(id string) {
	p.mu.Lock()
	p.queue = append(p.queue, syncOp{deleteID: id})
	p.markBusyLocked()
	p.mu.Unlock()
	p.signal()
}

func (p *pusher) markBusyLocked() {
	select {
	case <-p.settled:
		p.settled = make(chan struct{})
	default:
	}
}

func (p *pusher) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// wait blocks until the queue has fully drained or ctx expires.
func (p *pusher) wait(ctx context.Context) error {
	p.mu.Lock()
	ch := p.settled
	p.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the worker after the current drain finishes.
func (p *pusher) close() {
	close(p.stop)
	<-p.done
}

func (p *pusher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
			p.drain()
		}
	}
}

// drain executes queued ops one at a time until the queue is empty, then
// releases waiters.
func (p *pusher) drain() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			select {
			case <-p.settled:
			default:
				close(p.settled)
			}
			p.mu.Unlock()
			return
		}
		op := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.execute(op)
	}
}

func (p *pusher) execute(op syncOp) {
	if !p.net.Online() {
		if op.deleteID != "" {
			p.logger.Printf("offline, dropping remote delete for %s", op.deleteID)
		} else {
			p.logger.Printf("offline, dropping remote push (rev %d)", op.snap.Rev)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if op.deleteID != "" {
		if err := p.remote.DeleteByID(ctx, op.deleteID); err != nil {
			p.logger.Printf("WARNING: remote delete failed for %s: %v", op.deleteID, err)
			return
		}
		p.logger.Printf("deleted stop %s remotely", op.deleteID)
		return
	}

	if err := p.remote.UpsertAll(ctx, op.snap.Stops); err != nil {
		p.logger.Printf("WARNING: remote push failed (rev %d): %v", op.snap.Rev, err)
		return
	}
	p.logger.Printf("pushed %d stops (rev %d)", len(op.snap.Stops), op.snap.Rev)
}
