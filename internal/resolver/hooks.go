package resolver

import (
	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// Hooks are optional observation points around each resolution stage. Every
// list may be empty; the resolver is correct with the zero value. Callbacks
// may mutate only the object handed to them.
type Hooks struct {
	BeforeArgs     []func(*Args)
	AfterArgs      []func(*Args)
	BeforeFilters  []func(engine.Query, *Args)
	AfterFilters   []func(engine.Query, *Args)
	BeforeSort     []func(engine.Query, *Args)
	AfterSort      []func(engine.Query, *Args)
	BeforeExecute  []func(engine.Query, *Args)
	AfterExecute   []func(engine.Response)
	BeforeDocument []func(engine.Document)
	AfterDocument  []func(map[string]any)
	BeforeResult   []func(*Result)
}

func (h *Hooks) beforeArgs(args *Args) {
	for _, fn := range h.BeforeArgs {
		fn(args)
	}
}

func (h *Hooks) afterArgs(args *Args) {
	for _, fn := range h.AfterArgs {
		fn(args)
	}
}

func (h *Hooks) beforeFilters(q engine.Query, args *Args) {
	for _, fn := range h.BeforeFilters {
		fn(q, args)
	}
}

func (h *Hooks) afterFilters(q engine.Query, args *Args) {
	for _, fn := range h.AfterFilters {
		fn(q, args)
	}
}

func (h *Hooks) beforeSort(q engine.Query, args *Args) {
	for _, fn := range h.BeforeSort {
		fn(q, args)
	}
}

func (h *Hooks) afterSort(q engine.Query, args *Args) {
	for _, fn := range h.AfterSort {
		fn(q, args)
	}
}

func (h *Hooks) beforeExecute(q engine.Query, args *Args) {
	for _, fn := range h.BeforeExecute {
		fn(q, args)
	}
}

func (h *Hooks) afterExecute(resp engine.Response) {
	for _, fn := range h.AfterExecute {
		fn(resp)
	}
}

func (h *Hooks) beforeDocument(doc engine.Document) {
	for _, fn := range h.BeforeDocument {
		fn(doc)
	}
}

func (h *Hooks) afterDocument(data map[string]any) {
	for _, fn := range h.AfterDocument {
		fn(data)
	}
}

func (h *Hooks) beforeResult(result *Result) {
	for _, fn := range h.BeforeResult {
		fn(result)
	}
}
