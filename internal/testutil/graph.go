// Package testutil holds fakes and helpers shared by package tests.
package testutil

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Kantosaurus/test-01/internal/graphdb"
)

// Call is one statement observed by FakeStore.
type Call struct {
	Cypher string
	Params map[string]any
	Mode   string // "read", "write" or "tx"
}

// Responder produces the result of a statement.
type Responder func(params map[string]any) ([]*neo4j.Record, error)

type route struct {
	fragment string
	respond  Responder
}

// FakeStore is a scripted graphdb.Store. Statements are answered by the most
// recently registered responder whose fragment occurs in the Cypher text;
// unmatched statements return no records.
type FakeStore struct {
	mu        sync.Mutex
	routes    []route
	calls     []Call
	PingErr   error
	Commits   int
	Rollbacks int
}

var _ graphdb.Store = (*FakeStore)(nil)

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// On registers r for statements containing fragment.
func (f *FakeStore) On(fragment string, r Responder) *FakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route{fragment: fragment, respond: r})
	return f
}

// OnRecords answers statements containing fragment with recs.
func (f *FakeStore) OnRecords(fragment string, recs ...*neo4j.Record) *FakeStore {
	return f.On(fragment, func(map[string]any) ([]*neo4j.Record, error) { return recs, nil })
}

// OnError fails statements containing fragment with err.
func (f *FakeStore) OnError(fragment string, err error) *FakeStore {
	return f.On(fragment, func(map[string]any) ([]*neo4j.Record, error) { return nil, err })
}

func (f *FakeStore) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return f.exec("read", cypher, params)
}

func (f *FakeStore) Write(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return f.exec("write", cypher, params)
}

func (f *FakeStore) InTx(ctx context.Context, fn func(ctx context.Context, tx graphdb.Querier) error) error {
	if err := fn(ctx, txQuerier{f}); err != nil {
		f.mu.Lock()
		f.Rollbacks++
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	f.Commits++
	f.mu.Unlock()
	return nil
}

func (f *FakeStore) Ping(ctx context.Context) error {
	return f.PingErr
}

type txQuerier struct{ f *FakeStore }

func (q txQuerier) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return q.f.exec("tx", cypher, params)
}

func (f *FakeStore) exec(mode, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Cypher: cypher, Params: params, Mode: mode})
	var respond Responder
	for i := len(f.routes) - 1; i >= 0; i-- {
		if strings.Contains(cypher, f.routes[i].fragment) {
			respond = f.routes[i].respond
			break
		}
	}
	f.mu.Unlock()

	if respond == nil {
		return nil, nil
	}
	return respond(params)
}

// Calls returns every statement observed so far.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns the statements whose Cypher contains fragment.
func (f *FakeStore) CallsMatching(fragment string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.Cypher, fragment) {
			out = append(out, c)
		}
	}
	return out
}

// Record builds a *neo4j.Record from column values. Keys are sorted so that
// records are deterministic.
func Record(values map[string]any) *neo4j.Record {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]any, len(keys))
	for i, k := range keys {
		vals[i] = values[k]
	}
	return &neo4j.Record{Keys: keys, Values: vals}
}

var (
	nodeLabelPattern = regexp.MustCompile(`\(\w*:(\w+)`)
	relTypePattern   = regexp.MustCompile(`\[\w*:(\w+)\]`)
)

// GraphNames returns the node labels and relationship types a Cypher
// statement mentions, in order of appearance.
func GraphNames(cypher string) (nodes, rels []string) {
	for _, m := range nodeLabelPattern.FindAllStringSubmatch(cypher, -1) {
		nodes = append(nodes, m[1])
	}
	for _, m := range relTypePattern.FindAllStringSubmatch(cypher, -1) {
		rels = append(rels, m[1])
	}
	return nodes, rels
}
