package api

import "github.com/go-chi/chi/v5"

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	registrars []func(chi.Router)
}

// WithRoutes mounts extra routes on the server's router.
func WithRoutes(register func(chi.Router)) Option {
	return func(c *serverConfig) {
		if register != nil {
			c.registrars = append(c.registrars, register)
		}
	}
}
