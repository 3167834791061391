package app

import (
	"fmt"
	"sync"
)

// Default analytics page type.
const DefaultPageType = "esri-geoxc-apl-demo"

// DataLayer is the analytics page description kept in sync with the
// name and title parameters.
type DataLayer struct {
	mu      sync.RWMutex
	fields  map[string]string
	cancels []func()
}

// NewDataLayer returns a data layer for pagePath.
func NewDataLayer(pageType, pagePath string) *DataLayer {
	if pageType == "" {
		pageType = DefaultPageType
	}
	return &DataLayer{fields: map[string]string{"pageType": pageType, "pagePath": pagePath}}
}

// Attach watches p so that pageName follows "name" and pageTitle follows
// "title".
func (d *DataLayer) Attach(p *Params) {
	c1 := p.Watch(ParamName, func(v any) { d.Update(map[string]string{"pageName": fmt.Sprint(v)}) })
	c2 := p.Watch(ParamTitle, func(v any) { d.Update(map[string]string{"pageTitle": fmt.Sprint(v)}) })
	d.mu.Lock()
	d.cancels = append(d.cancels, c1, c2)
	d.mu.Unlock()
}

// Detach stops following parameters.
func (d *DataLayer) Detach() {
	d.mu.Lock()
	cancels := d.cancels
	d.cancels = nil
	d.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}

// Update merges fields into the data layer.
func (d *DataLayer) Update(fields map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range fields {
		d.fields[k] = v
	}
}

// Snapshot returns a copy of the data layer.
func (d *DataLayer) Snapshot() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}
