package httpserver

import "github.com/orbs-network/orbs-tally/config"

type ServerConfig struct {
	httpAddress    string
	maxConnections uint32
	profiling      bool
}

func NewServerConfig(httpAddress string, maxConnections uint32, profiling bool) config.HttpServerConfig {
	return &ServerConfig{
		httpAddress:    httpAddress,
		maxConnections: maxConnections,
		profiling:      profiling,
	}
}

func (c *ServerConfig) HttpAddress() string {
	return c.httpAddress
}

func (c *ServerConfig) HttpMaxConnections() uint32 {
	return c.maxConnections
}

func (c *ServerConfig) Profiling() bool {
	return c.profiling
}
