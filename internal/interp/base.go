package interp

import (
	_ "embed"
	"fmt"
)

//go:embed base.R
var baseSource string

// LoadBase evaluates the base library into the base environment.
func (in *Interp) LoadBase() error {
	exprs, err := in.Parse("base.R", baseSource)
	if err != nil {
		return fmt.Errorf("base library: %w", err)
	}
	var rerr *RError
	in.runRoot(func() {
		in.Protect(exprs)
		for i := range in.Length(exprs) {
			if rerr = in.evalTopLevel(in.VectorElt(exprs, i), in.Nil); rerr != nil {
				return
			}
		}
	})
	in.flushWarnings()
	if rerr != nil {
		return fmt.Errorf("base library: %w", rerr)
	}
	return nil
}
