package live

import (
	"errors"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

// ErrSessionClosed is reported by Receive after a local Close.
var ErrSessionClosed = errors.New("live session closed")

// IsConnectionClosed reports whether the error marks the end of a live
// connection, locally closed or dropped by the server, as opposed to a
// protocol failure.
func IsConnectionClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSessionClosed) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
