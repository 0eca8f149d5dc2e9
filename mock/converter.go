package mock

import "github.com/fwojciec/opra"

var _ opra.Converter = (*Converter)(nil)

// Converter is a mock implementation of opra.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
