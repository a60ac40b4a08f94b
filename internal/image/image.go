// Package image saves the bindings of the global environment to a msgpack
// workspace image and restores them into a fresh interpreter.
package image

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"erre/internal/interp"
)

// Magic opens every image.
const Magic = "ERREIMG1"

// Current schema version; bump when the node layout changes.
const schemaVersion uint16 = 1

// Environment references in Node.Env and Env.Enclos.
const (
	envGlobal = -1
	envBase   = -2
)

// Node markers for the two special symbols.
const (
	markMissing uint8 = 1
	markUnbound uint8 = 2
)

// Document is the top-level msgpack value.
type Document struct {
	Magic   string    `msgpack:"magic"`
	Schema  uint16    `msgpack:"schema"`
	Envs    []Env     `msgpack:"envs"`
	Globals []Binding `msgpack:"globals"`
}

// Env is one non-global environment, referenced by its table index.
type Env struct {
	Enclos int       `msgpack:"enclos"`
	Frame  []Binding `msgpack:"frame"`
}

type Binding struct {
	Name  string `msgpack:"n"`
	Value *Node  `msgpack:"v"`
}

// Node is one heap object. A nil Node is NULL. Pairlists and calls keep
// their elements in Elts with the tags alongside, so long lists do not
// nest.
type Node struct {
	Kind  uint8     `msgpack:"k"`
	Mark  uint8     `msgpack:"m,omitempty"`
	Name  string    `msgpack:"n,omitempty"` // symbol or primitive
	Ints  []int32   `msgpack:"i,omitempty"`
	Reals []float64 `msgpack:"r,omitempty"`
	Cplx  []float64 `msgpack:"c,omitempty"` // real, imaginary pairs
	Strs  []*string `msgpack:"s,omitempty"` // nil is NA
	Elts  []*Node   `msgpack:"e,omitempty"`
	Tags  []string  `msgpack:"t,omitempty"`
	Attr  []Binding `msgpack:"a,omitempty"`
	Env   int       `msgpack:"env,omitempty"`

	// closures and promises
	Formals *Node `msgpack:"f,omitempty"`
	Body    *Node `msgpack:"b,omitempty"`
	Value   *Node `msgpack:"pv,omitempty"`
	Forced  bool  `msgpack:"pf,omitempty"`
}

var (
	ErrBadMagic  = errors.New("not a workspace image")
	ErrBadSchema = errors.New("unsupported workspace image version")
)

// Save writes the global environment of in to w.
func Save(w io.Writer, in *interp.Interp) error {
	doc, err := encode(in)
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	return nil
}

// Load reads an image from r and defines its bindings in the global
// environment of in. Existing bindings with the same names are replaced.
func Load(r io.Reader, in *interp.Interp) error {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if doc.Magic != Magic {
		return ErrBadMagic
	}
	if doc.Schema != schemaVersion {
		return fmt.Errorf("%w: %d", ErrBadSchema, doc.Schema)
	}
	if err := validate(&doc); err != nil {
		return err
	}
	return in.Guard(func() { decode(in, &doc) })
}

// validate checks environment references before anything is allocated.
func validate(doc *Document) error {
	n := len(doc.Envs)
	check := func(ref int) error {
		if ref == envGlobal || ref == envBase || ref >= 0 && ref < n {
			return nil
		}
		return fmt.Errorf("image: environment reference %d out of range", ref)
	}
	var walk func(nd *Node) error
	walk = func(nd *Node) error {
		if nd == nil {
			return nil
		}
		switch interp.Kind(nd.Kind) {
		case interp.CloSXP, interp.EnvSXP:
			if err := check(nd.Env); err != nil {
				return err
			}
		case interp.PromSXP:
			if !nd.Forced {
				if err := check(nd.Env); err != nil {
					return err
				}
			}
		}
		for _, c := range []*Node{nd.Formals, nd.Body, nd.Value} {
			if err := walk(c); err != nil {
				return err
			}
		}
		for _, e := range nd.Elts {
			if err := walk(e); err != nil {
				return err
			}
		}
		for _, a := range nd.Attr {
			if err := walk(a.Value); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range doc.Envs {
		if err := check(e.Enclos); err != nil {
			return err
		}
		for _, b := range e.Frame {
			if err := walk(b.Value); err != nil {
				return err
			}
		}
	}
	for _, b := range doc.Globals {
		if err := walk(b.Value); err != nil {
			return err
		}
	}
	return nil
}
