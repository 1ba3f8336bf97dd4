package netx

import (
	"net"
	"strings"

	sockaddr "github.com/hashicorp/go-sockaddr"
	"github.com/pkg/errors"
)

// FreePort asks the kernel for an ephemeral tcp port by binding port 0 and
// immediately releasing it. the port may be claimed by another process before
// it is used.
func FreePort() (port int, err error) {
	var (
		l net.Listener
	)

	if l, err = net.Listen("tcp", ":0"); err != nil {
		return 0, errors.Wrap(err, "unable to allocate a port")
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// PortOrFree returns the port when positive, otherwise allocates a free port.
func PortOrFree(port int) (int, error) {
	if port > 0 {
		return port, nil
	}

	return FreePort()
}

// AutoIP is the sentinel that requests the private ip of the host be detected.
const AutoIP = "auto"

// ResolveIP resolves the ip address to advertise. blank returns blank,
// AutoIP detects the host's private ip, anything else must parse as an ip.
func ResolveIP(s string) (ip string, err error) {
	switch s = strings.TrimSpace(s); s {
	case "":
		return "", nil
	case AutoIP:
		if ip, err = sockaddr.GetPrivateIP(); err != nil {
			return "", errors.Wrap(err, "unable to detect private ip")
		}

		if ip == "" {
			return "", errors.New("unable to detect private ip: no private address found")
		}

		return ip, nil
	default:
		if net.ParseIP(s) == nil {
			return "", errors.Errorf("invalid ip address: %s", s)
		}

		return s, nil
	}
}
