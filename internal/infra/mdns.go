package infra

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

const (
	mdnsServicio = "_comercioapp._tcp"
	mdnsDominio  = "local."
)

// AnunciarMDNS announces the gateway on the LAN so terminals can find it
// without configuration. The returned func stops the announcement.
func AnunciarMDNS(instancia string, port int, version string) (func(), error) {
	server, err := zeroconf.Register(
		instancia,
		mdnsServicio,
		mdnsDominio,
		port,
		[]string{"version=" + version, "path=/v1"},
		nil, // all interfaces
	)
	if err != nil {
		return nil, fmt.Errorf("mdns: register: %w", err)
	}
	log.Info().Str("service", mdnsServicio+"."+mdnsDominio).Int("port", port).Msg("mdns: gateway announced")
	return func() {
		server.Shutdown()
		log.Info().Msg("mdns: announcement stopped")
	}, nil
}
