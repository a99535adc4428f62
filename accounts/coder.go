package accounts

import (
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/accounts-coder/codec"
	"github.com/wippyai/accounts-coder/errors"
	"github.com/wippyai/accounts-coder/layout"
	"github.com/wippyai/accounts-coder/schema"
	"github.com/wippyai/accounts-coder/value"
)

// Coder encodes and decodes the accounts of one schema. It is read-only
// after New returns and safe for concurrent use.
type Coder struct {
	entries map[string]*entry
	byDisc  map[Discriminator]*entry
	enc     *codec.Encoder
	dec     *codec.Decoder
	log     *zap.Logger
	names   []string
	options Options
}

type entry struct {
	layout *layout.Layout
	name   string
	disc   Discriminator
}

// Filter is an RPC memcmp filter selecting accounts by discriminator.
type Filter struct {
	Bytes  string `json:"bytes"`
	Offset int    `json:"offset"`
}

// New compiles s and builds the discriminator table. A nil or empty schema
// yields a coder that knows no accounts.
func New(s *schema.Schema, opts Options) (*Coder, error) {
	log := opts.logger()

	byDisc := make(map[Discriminator]string)
	for _, name := range s.AccountNames() {
		d := NewDiscriminator(name)
		if prev, ok := byDisc[d]; ok {
			return nil, errors.DiscriminatorCollision(prev, name, d)
		}
		byDisc[d] = name
	}

	layouts, err := layout.Compile(s)
	if err != nil {
		return nil, err
	}

	c := &Coder{
		entries: make(map[string]*entry, len(layouts)),
		byDisc:  make(map[Discriminator]*entry, len(layouts)),
		enc:     codec.NewEncoder(),
		dec:     codec.NewDecoder(),
		log:     log,
		options: opts,
	}
	for d, name := range byDisc {
		e := &entry{name: name, disc: d, layout: layouts[name]}
		c.entries[name] = e
		c.byDisc[d] = e
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	log.Debug("account coder ready",
		zap.Int("accounts", len(c.names)),
		zap.Bool("strict", opts.Strict),
	)
	return c, nil
}

// NewWithDefaults creates a coder with default options.
func NewWithDefaults(s *schema.Schema) (*Coder, error) {
	return New(s, DefaultOptions())
}

// Options returns the configuration.
func (c *Coder) Options() Options {
	return c.options
}

func (c *Coder) lookup(phase errors.Phase, name string) (*entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, errors.UnknownAccountType(phase, name)
	}
	return e, nil
}

// Encode returns the discriminator of name followed by the payload of v.
func (c *Coder) Encode(name string, v any) ([]byte, error) {
	e, err := c.lookup(errors.PhaseEncode, name)
	if err != nil {
		return nil, err
	}

	root := e.layout.Root
	nv, err := c.enc.Normalize(root, v)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, DiscriminatorSize+c.enc.Size(root, nv))
	copy(buf, e.disc[:])
	n, err := c.enc.EncodeTo(buf[DiscriminatorSize:], root, nv)
	if err != nil {
		return nil, err
	}
	return buf[:DiscriminatorSize+n], nil
}

// Decode checks the discriminator of data against name and decodes the
// payload that follows it.
func (c *Coder) Decode(name string, data []byte) (value.Struct, error) {
	e, err := c.lookup(errors.PhaseDecode, name)
	if err != nil {
		return nil, err
	}
	return c.decode(e, data)
}

// DecodeInto decodes like Decode and stores the result in dst, which must
// be a non-nil pointer.
func (c *Coder) DecodeInto(name string, data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("destination must be a non-nil pointer, got %T", dst).
			Build()
	}

	e, err := c.lookup(errors.PhaseDecode, name)
	if err != nil {
		return err
	}
	s, err := c.decode(e, data)
	if err != nil {
		return err
	}
	return codec.Assign(e.layout.Root, s, rv.Elem())
}

// Identify returns the account name whose discriminator prefixes data.
func (c *Coder) Identify(data []byte) (string, error) {
	e, err := c.identify(data)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// DecodeAny identifies data by its discriminator and decodes it.
func (c *Coder) DecodeAny(data []byte) (string, value.Struct, error) {
	e, err := c.identify(data)
	if err != nil {
		return "", nil, err
	}
	s, err := c.decode(e, data)
	if err != nil {
		return "", nil, err
	}
	return e.name, s, nil
}

func (c *Coder) identify(data []byte) (*entry, error) {
	if len(data) < DiscriminatorSize {
		return nil, errors.Truncated(nil, DiscriminatorSize, len(data))
	}
	e, ok := c.byDisc[Discriminator(data[:DiscriminatorSize])]
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnknownAccountType).
			Detail("no account with discriminator %x", data[:DiscriminatorSize]).
			Build()
	}
	return e, nil
}

func (c *Coder) decode(e *entry, data []byte) (value.Struct, error) {
	if len(data) < DiscriminatorSize {
		return nil, errors.Truncated(nil, DiscriminatorSize, len(data))
	}
	if got := Discriminator(data[:DiscriminatorSize]); got != e.disc {
		return nil, errors.DiscriminatorMismatch(e.name, e.disc, got)
	}
	if need := DiscriminatorSize + e.layout.MinSize; len(data) < need {
		return nil, errors.Truncated(nil, need, len(data))
	}

	v, n, err := c.dec.Decode(e.layout.Root, data[DiscriminatorSize:])
	if err != nil {
		return nil, err
	}

	if extra := len(data) - DiscriminatorSize - n; extra > 0 {
		if c.options.Strict {
			return nil, errors.TrailingBytes(e.name, extra)
		}
		c.log.Warn("ignoring trailing bytes",
			zap.String("account", e.name),
			zap.Int("trailing", extra),
		)
	}

	s, _ := v.(value.Struct)
	return s, nil
}

// Discriminator returns the discriminator of a registered account.
func (c *Coder) Discriminator(name string) (Discriminator, error) {
	e, err := c.lookup(errors.PhaseEncode, name)
	if err != nil {
		return Discriminator{}, err
	}
	return e.disc, nil
}

// Layout returns the compiled layout of a registered account.
func (c *Coder) Layout(name string) (*layout.Layout, error) {
	e, err := c.lookup(errors.PhaseEncode, name)
	if err != nil {
		return nil, err
	}
	return e.layout, nil
}

// Size returns the smallest encoded size of name, discriminator included.
func (c *Coder) Size(name string) (int, error) {
	e, err := c.lookup(errors.PhaseEncode, name)
	if err != nil {
		return 0, err
	}
	return DiscriminatorSize + e.layout.MinSize, nil
}

// Fixed reports whether every value of name encodes to exactly Size bytes.
func (c *Coder) Fixed(name string) (bool, error) {
	e, err := c.lookup(errors.PhaseEncode, name)
	if err != nil {
		return false, err
	}
	return e.layout.Fixed, nil
}

// MemcmpFilter returns the filter matching accounts of name.
func (c *Coder) MemcmpFilter(name string) (Filter, error) {
	d, err := c.Discriminator(name)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Offset: 0, Bytes: d.Base58()}, nil
}

// Names returns the registered account names in sorted order.
func (c *Coder) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
