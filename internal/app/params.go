package app

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"sitecompare/internal/observable"
)

// Well-known parameter names.
const (
	ParamTitle       = "title"
	ParamDescription = "description"
	ParamName        = "name"
)

// Params are the observable application parameters. Some are shareable and
// make up the share URL.
type Params struct {
	store *observable.Store

	mu        sync.Mutex
	shareable []string
}

// NewParams seeds a parameter set with initial values.
func NewParams(initial map[string]any) *Params {
	p := &Params{store: observable.New()}
	for k, v := range initial {
		p.store.Set(k, v)
	}
	return p
}

// Set stores value and, when shareable, marks name for the share URL. It
// returns the stored value.
func (p *Params) Set(name string, value any, shareable bool) any {
	p.store.Set(name, value)
	if shareable {
		p.MarkShareable(name)
	}
	return p.Get(name)
}

// Get returns the value of name, or nil.
func (p *Params) Get(name string) any {
	v, _ := p.store.Get(name)
	return v
}

// MarkShareable adds an existing parameter to the share list once.
func (p *Params) MarkShareable(name string) {
	if _, ok := p.store.Get(name); !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.shareable {
		if s == name {
			return
		}
	}
	p.shareable = append(p.shareable, name)
}

// ApplyQuery sets every query parameter as a shareable string value.
func (p *Params) ApplyQuery(q url.Values) {
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		p.Set(k, vs[len(vs)-1], true)
	}
}

// Shareable returns the shareable parameter names in the order they were
// marked.
func (p *Params) Shareable() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.shareable...)
}

// Snapshot returns every parameter value.
func (p *Params) Snapshot() map[string]any { return p.store.Snapshot() }

// Watch registers fn for changes of name; a set value is replayed.
func (p *Params) Watch(name string, fn observable.Handler) (cancel func()) {
	return p.store.Watch(name, fn)
}

// ShareURL appends the non-empty shareable parameters to base.
func (p *Params) ShareURL(base string) string {
	var parts []string
	for _, name := range p.Shareable() {
		v := p.Get(name)
		if empty(v) {
			continue
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(fmt.Sprint(v)))
	}
	if len(parts) == 0 {
		return base
	}
	return base + "?" + strings.Join(parts, "&")
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}
