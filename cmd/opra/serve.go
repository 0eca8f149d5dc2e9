package main

import (
	"fmt"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := deps.Server
	s.Addr = c.Addr
	if len(c.AllowedOrigins) > 0 {
		s.AllowedOrigins = c.AllowedOrigins
	}

	if err := s.Open(); err != nil {
		return printError(deps, err)
	}
	fmt.Fprintf(deps.Stderr, "Listening on %s\n", s.URL())

	<-deps.Ctx.Done()

	fmt.Fprintln(deps.Stderr, "Shutting down")
	return s.Close()
}
