package bench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
)

// NameSocket is the estimator that farms throws out to remote workers.
const NameSocket = "MasterSocket"

// DefaultWorkerPort is the port a worker listens on when none is given.
const DefaultWorkerPort = 25545

// endMessage closes a worker session.
const endMessage = "END"

var (
	// ErrProtocol is returned when a peer sends a line that is not part of the exchange.
	ErrProtocol = errors.New("worker protocol error")
	// ErrNoWorkers is returned when the socket estimator has no worker address.
	ErrNoWorkers = errors.New("no worker address configured")
)

// Socket is a master that splits the throws across TCP workers. Each worker gets the
// per-worker point count as a text line, answers with its hit count and is then sent END.
// With more cores than addresses the addresses are reused round-robin; a worker serves
// every connection concurrently.
type Socket struct {
	Addrs       []string
	DialTimeout time.Duration
}

func (Socket) Name() string { return NameSocket }

// Estimate ignores seed: workers draw from their own sources.
func (s Socket) Estimate(ctx context.Context, totalPoints, cores int, _ uint64) (float64, error) {
	if err := validate(totalPoints, cores); err != nil {
		return 0, err
	}
	if len(s.Addrs) == 0 {
		return 0, ErrNoWorkers
	}
	perWorker := totalPoints / cores
	var hits atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cores; w++ {
		addr := s.Addrs[w%len(s.Addrs)]
		g.Go(func() error {
			n, err := s.request(gctx, addr, perWorker)
			if err != nil {
				return err
			}
			hits.Add(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return 4 * float64(hits.Load()) / float64(perWorker*cores), nil
}

func (s Socket) request(ctx context.Context, addr string, points int) (int64, error) {
	timeout := s.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, s.ioErr(ctx, addr, fmt.Errorf("dial: %w", err))
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := fmt.Fprintf(conn, "%d\n", points); err != nil {
		return 0, s.ioErr(ctx, addr, err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return 0, s.ioErr(ctx, addr, err)
	}
	hits, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil || hits < 0 || hits > int64(points) {
		return 0, fmt.Errorf("%w: worker %s answered %q to %d points", ErrProtocol, addr, strings.TrimSpace(line), points)
	}
	if _, err := io.WriteString(conn, endMessage+"\n"); err != nil {
		return 0, s.ioErr(ctx, addr, err)
	}
	logging.Debugf("[master] %s: %d/%d hits", addr, hits, points)
	return hits, nil
}

func (Socket) ioErr(ctx context.Context, addr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("worker %s: %w", addr, err)
}

// Worker answers master requests: for every point count it receives it throws that many
// points and replies with the hits, until END or the connection closes.
type Worker struct {
	Seed uint64
}

// ListenAndServe listens on addr and serves until ctx is done.
func (w *Worker) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logging.Infof("[worker] listening on %s", ln.Addr())
	return w.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and waits for the
// open sessions to end. It returns nil on cancellation.
func (w *Worker) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	var wg sync.WaitGroup
	defer wg.Wait()
	for id := 0; ; id++ {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.session(ctx, conn, id); err != nil {
				logging.Warnf("[worker] %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}

func (w *Worker) session(ctx context.Context, conn net.Conn, id int) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	r := newRand(w.Seed, id)
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == endMessage {
			logging.Debugf("[worker] session %d ended", id)
			return nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: unexpected line %q", ErrProtocol, line)
		}
		var hits int64
		if err := throw(ctx, r, n, func() { hits++ }); err != nil {
			return err
		}
		logging.Debugf("[worker] session %d: %d/%d hits", id, hits, n)
		if _, err := fmt.Fprintf(conn, "%d\n", hits); err != nil {
			return fmt.Errorf("reply: %w", err)
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Select resolves estimator names. NameSocket is only available when worker addresses
// are given; the other names come from the in-process registry.
func Select(workers []string, names ...string) ([]Estimator, error) {
	out := make([]Estimator, 0, len(names))
	for _, n := range names {
		if n == NameSocket {
			if len(workers) == 0 {
				return nil, fmt.Errorf("%s: %w", NameSocket, ErrNoWorkers)
			}
			out = append(out, Socket{Addrs: workers})
			continue
		}
		e, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e...)
	}
	return out, nil
}
