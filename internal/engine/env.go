package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// PIDLength is the expected byte length of THINKNODE_PID. The protocol
// sends it as-is in the Register body with no padding or validation by the
// wire layer itself (§3), so the engine validates it once at startup
// instead, per Design Note (a).
const PIDLength = 32

var (
	// ErrEnvMissing is returned when a required THINKNODE_* variable is unset.
	ErrEnvMissing = errors.New("engine: required environment variable missing")

	// ErrEnvInvalid is returned when a THINKNODE_* variable is set but
	// malformed (a non-numeric port, a PID of the wrong length).
	ErrEnvInvalid = errors.New("engine: environment variable invalid")
)

// Endpoint holds the environment-provided connection parameters.
type Endpoint struct {
	Host string
	Port string
	PID  string
}

// LoadEndpoint reads THINKNODE_HOST, THINKNODE_PORT, and THINKNODE_PID from
// the process environment.
func LoadEndpoint() (Endpoint, error) {
	host := os.Getenv("THINKNODE_HOST")
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: THINKNODE_HOST", ErrEnvMissing)
	}

	port := os.Getenv("THINKNODE_PORT")
	if port == "" {
		return Endpoint{}, fmt.Errorf("%w: THINKNODE_PORT", ErrEnvMissing)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return Endpoint{}, fmt.Errorf("%w: THINKNODE_PORT must be a decimal port number, got %q", ErrEnvInvalid, port)
	}

	pid := os.Getenv("THINKNODE_PID")
	if pid == "" {
		return Endpoint{}, fmt.Errorf("%w: THINKNODE_PID", ErrEnvMissing)
	}
	if len(pid) != PIDLength {
		return Endpoint{}, fmt.Errorf("%w: THINKNODE_PID must be %d bytes, got %d", ErrEnvInvalid, PIDLength, len(pid))
	}

	return Endpoint{Host: host, Port: port, PID: pid}, nil
}

// Address formats the host:port pair for net.Dial.
func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}
