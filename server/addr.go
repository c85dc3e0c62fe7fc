package server

import (
	"fmt"
	"net"
	"os"
)

func genericInterface(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && (ip.String() == "127.0.0.1" || ip.String() == "0.0.0.0")
}

// SiteAddr derives the advertised base URL from the listen address. Wildcard
// and loopback interfaces are replaced by the host name.
func SiteAddr(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}

	if host == "" || genericInterface(host) {
		if host, err = os.Hostname(); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("http://%s:%s", host, port), nil
}
