package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/protocol"
)

// maxMessageSize bounds a single newline delimited JSON-RPC message
const maxMessageSize = 4 * 1024 * 1024

// StdioTransport speaks newline delimited JSON-RPC over a reader and writer,
// normally stdin and stdout
type StdioTransport struct {
	scanner *bufio.Scanner
	mu      sync.Mutex
	writer  *bufio.Writer
}

// NewStdioTransport creates a transport on stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport on any reader/writer pair
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	return &StdioTransport{
		scanner: scanner,
		writer:  bufio.NewWriter(w),
	}
}

var _ Transport = (*StdioTransport)(nil)

// ReadRequest blocks for the next non blank line and parses it.
// io.EOF means the client went away.
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	for t.scanner.Scan() {
		line := bytes.TrimSpace(t.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		logger.Debug("Received raw request:", string(line))

		request, err := protocol.ParseJsonRpcRequest(line)
		if err != nil {
			logger.Error("Failed to parse JSON-RPC request:", err)
			return nil, &ParseError{Err: err}
		}
		return request, nil
	}
	if err := t.scanner.Err(); err != nil {
		logger.Error("Error reading from input:", err)
		return nil, err
	}
	logger.Info("Received EOF, client disconnected")
	return nil, io.EOF
}

// WriteResponse writes one response as a single line
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal response:", err)
		return err
	}
	responseBytes = append(responseBytes, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.writer.Write(responseBytes); err != nil {
		logger.Error("Failed to write response:", err)
		return err
	}
	if err := t.writer.Flush(); err != nil {
		logger.Error("Failed to flush response:", err)
		return err
	}
	logger.Debug("Sent response:", string(responseBytes))
	return nil
}

// ParseError is a malformed message. The stream itself is still usable.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed request: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
