// Package gamestatus queries the game server over the Steam query protocol
// and caches the result for the site's status widget.
package gamestatus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ernie/survivor-stats/internal/domain"
)

const (
	a2sHeader      = "\xff\xff\xff\xff"
	a2sInfoRequest = a2sHeader + "TSource Engine Query\x00"
	a2sInfoReply   = 'I'
	a2sChallenge   = 'A'
	timeout        = 2 * time.Second
	maxResponse    = 1400
)

var (
	errShortPacket = errors.New("short packet")
	errSplitPacket = errors.New("split responses are not supported")
)

// Querier fetches the live server status
type Querier interface {
	QueryStatus(ctx context.Context) (*domain.ServerStatus, error)
}

// A2SClient queries a server's A2S_INFO endpoint via UDP
type A2SClient struct {
	address string
	timeout time.Duration
}

// NewA2SClient creates a client for the query port at address
func NewA2SClient(address string) *A2SClient {
	return &A2SClient{address: address, timeout: timeout}
}

// QueryStatus sends A2S_INFO, answering a challenge if the server asks for one
func (c *A2SClient) QueryStatus(ctx context.Context) (*domain.ServerStatus, error) {
	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	conn, err := d.DialContext(dialCtx, "udp", c.address)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetDeadline(deadline)

	start := time.Now()
	request := []byte(a2sInfoRequest)
	buf := make([]byte, maxResponse)
	// newer servers answer the first request with a challenge
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := conn.Write(request); err != nil {
			return nil, fmt.Errorf("sending request: %w", err)
		}
		n, err := conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		kind, body, err := splitPacket(buf[:n])
		if err != nil {
			return nil, err
		}
		switch kind {
		case a2sChallenge:
			if len(body) < 4 {
				return nil, fmt.Errorf("challenge: %w", errShortPacket)
			}
			request = append([]byte(a2sInfoRequest), body[:4]...)
		case a2sInfoReply:
			status, err := parseInfo(body)
			if err != nil {
				return nil, err
			}
			status.PingMs = time.Since(start).Milliseconds()
			status.CheckedAt = time.Now().UTC()
			return status, nil
		default:
			return nil, fmt.Errorf("unexpected response type %q", kind)
		}
	}
	return nil, errors.New("server kept answering with challenges")
}

// splitPacket strips the single-packet header and returns the response type and payload
func splitPacket(data []byte) (byte, []byte, error) {
	if len(data) < 5 {
		return 0, nil, errShortPacket
	}
	if !bytes.HasPrefix(data, []byte(a2sHeader)) {
		if bytes.HasPrefix(data, []byte("\xfe\xff\xff\xff")) {
			return 0, nil, errSplitPacket
		}
		return 0, nil, errors.New("invalid response prefix")
	}
	return data[4], data[5:], nil
}

// parseInfo decodes the A2S_INFO payload after the type byte.
// Format: protocol, name\0, map\0, folder\0, game\0, app id (uint16 LE), players, max players, bots, ...
func parseInfo(body []byte) (*domain.ServerStatus, error) {
	r := infoReader{data: body}
	r.readByte() // protocol
	name := r.readString()
	mapName := r.readString()
	r.readString() // folder
	r.readString() // game
	r.skip(2) // app id
	players := r.readByte()
	maxPlayers := r.readByte()
	bots := r.readByte()
	if r.err != nil {
		return nil, fmt.Errorf("parsing info: %w", r.err)
	}

	online := int(players) - int(bots)
	if online < 0 {
		online = 0
	}
	return &domain.ServerStatus{
		Online:     true,
		Name:       name,
		Map:        mapName,
		Players:    online,
		MaxPlayers: int(maxPlayers),
	}, nil
}

type infoReader struct {
	data []byte
	pos  int
	err  error
}

func (r *infoReader) readByte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.err = errShortPacket
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *infoReader) readString() string {
	if r.err != nil {
		return ""
	}
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		r.err = errShortPacket
		return ""
	}
	s := string(r.data[r.pos : r.pos+end])
	r.pos += end + 1
	return s
}

func (r *infoReader) skip(n int) {
	if r.err != nil {
		return
	}
	if r.pos+n > len(r.data) {
		r.err = errShortPacket
		return
	}
	r.pos += n
}
