package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// TCP implements Dialer and Binder over plain TCP connections, using a
// simple length-prefixed multipart frame encoding: a message is a
// big-endian uint32 frame count followed by, for each frame, a big-endian
// uint32 byte length and the frame bytes themselves.
type TCP struct{}

// NewTCP constructs the default TCP-backed transport.
func NewTCP() *TCP { return &TCP{} }

func (TCP) Dial(ctx context.Context, endpoint string) (Dealer, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", endpoint, err)
	}
	return newTCPDealer(conn), nil
}

func (TCP) Bind(ctx context.Context, endpoint string) (Router, error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: bind %s: %w", endpoint, err)
	}
	r := &tcpRouter{
		ln:    ln,
		conns: make(map[Identity]net.Conn),
		inbox: make(chan routerMsg, 64),
		done:  make(chan struct{}),
	}
	go r.acceptLoop()
	return r, nil
}

// writeMessage encodes and writes a multipart message.
func writeMessage(w io.Writer, frames [][]byte) error {
	hdr := make([]byte, 4)
	binary.BigEndian.PutUint32(hdr, uint32(len(frames)))
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	for _, f := range frames {
		binary.BigEndian.PutUint32(hdr, uint32(len(f)))
		if _, err := w.Write(hdr); err != nil {
			return err
		}
		if len(f) > 0 {
			if _, err := w.Write(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// readMessage reads one multipart message from r.
func readMessage(r io.Reader) ([][]byte, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr)
	frames := make([][]byte, n)
	for i := range frames {
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil, err
		}
		flen := binary.BigEndian.Uint32(hdr)
		buf := make([]byte, flen)
		if flen > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
		}
		frames[i] = buf
	}
	return frames, nil
}

type tcpDealer struct {
	conn net.Conn
	r    *bufio.Reader
	mu   sync.Mutex

	recvMu sync.Mutex
}

func newTCPDealer(conn net.Conn) *tcpDealer {
	return &tcpDealer{conn: conn, r: bufio.NewReader(conn)}
}

func (d *tcpDealer) Send(ctx context.Context, frames [][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = d.conn.SetWriteDeadline(dl)
	} else {
		_ = d.conn.SetWriteDeadline(time.Time{})
	}
	return writeMessage(d.conn, frames)
}

func (d *tcpDealer) Recv(ctx context.Context, timeout time.Duration) ([][]byte, bool, error) {
	d.recvMu.Lock()
	defer d.recvMu.Unlock()
	if timeout > 0 {
		_ = d.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = d.conn.SetReadDeadline(time.Time{})
	}
	// Cancelling ctx expires the read deadline so a blocked read returns.
	stop := context.AfterFunc(ctx, func() { _ = d.conn.SetReadDeadline(time.Now()) })
	defer stop()
	frames, err := readMessage(d.r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, false, nil
		}
		return nil, false, err
	}
	return frames, true, nil
}

func (d *tcpDealer) Close() error {
	return d.conn.Close()
}

type routerMsg struct {
	id     Identity
	frames [][]byte
}

type tcpRouter struct {
	ln    net.Listener
	inbox chan routerMsg
	done  chan struct{}

	mu    sync.RWMutex
	conns map[Identity]net.Conn

	closeOnce sync.Once
}

func (r *tcpRouter) acceptLoop() {
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			return
		}
		id := Identity(conn.RemoteAddr().String())
		r.mu.Lock()
		r.conns[id] = conn
		r.mu.Unlock()
		go r.readLoop(id, conn)
	}
}

func (r *tcpRouter) readLoop(id Identity, conn net.Conn) {
	br := bufio.NewReader(conn)
	for {
		frames, err := readMessage(br)
		if err != nil {
			r.mu.Lock()
			delete(r.conns, id)
			r.mu.Unlock()
			return
		}
		select {
		case r.inbox <- routerMsg{id: id, frames: frames}:
		case <-r.done:
			return
		}
	}
}

func (r *tcpRouter) Recv(ctx context.Context, timeout time.Duration) (Identity, [][]byte, bool, error) {
	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		timeoutCh = timer.C
		defer timer.Stop()
	}
	select {
	case m := <-r.inbox:
		return m.id, m.frames, true, nil
	case <-timeoutCh:
		return "", nil, false, nil
	case <-ctx.Done():
		return "", nil, false, ctx.Err()
	case <-r.done:
		return "", nil, false, fmt.Errorf("transport: router closed")
	}
}

func (r *tcpRouter) SendTo(ctx context.Context, id Identity, frames [][]byte) error {
	r.mu.RLock()
	conn, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: unknown peer identity %q", id)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(dl)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}
	return writeMessage(conn, frames)
}

func (r *tcpRouter) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		_ = r.ln.Close()
		r.mu.Lock()
		for _, c := range r.conns {
			_ = c.Close()
		}
		r.mu.Unlock()
	})
	return nil
}
