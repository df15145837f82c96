package main

import (
	"errors"
	"fmt"
)

// CollectAndCollapse is a graph-rewriting pass: it gathers maximal blocks
// of nodes selected by a predicate and replaces each block with a single
// node produced by a reduction function. The graph is mutated in place; the
// pass assumes exclusive ownership of it for the duration of Run.
type CollectAndCollapse struct {
	matches MatchFunc
	reduce  ReduceFunc
	oracle  CommutationOracle
	opts    CollectOptions
}

// NewCollectAndCollapse builds a pass from a predicate, a reduction
// function and collection options. The oracle may be nil unless
// CommutativeAnalysis is requested.
func NewCollectAndCollapse(matches MatchFunc, reduce ReduceFunc, oracle CommutationOracle, opts CollectOptions) (*CollectAndCollapse, error) {
	if matches == nil {
		return nil, fmt.Errorf("%w: nil match function", ErrInvalidConfig)
	}
	if reduce == nil {
		return nil, fmt.Errorf("%w: nil reduce function", ErrInvalidConfig)
	}
	if err := opts.validate(oracle); err != nil {
		return nil, err
	}
	return &CollectAndCollapse{matches: matches, reduce: reduce, oracle: oracle, opts: opts}, nil
}

// Options returns the pass configuration.
func (p *CollectAndCollapse) Options() CollectOptions { return p.opts }

// Run collects blocks and collapses each one independently, in block
// order. A failed reduction leaves its block in place and is reported in
// the returned error; it does not stop the remaining blocks. Any other
// failure aborts the pass.
func (p *CollectAndCollapse) Run(d *DAG) error {
	blocks, err := CollectBlocks(d, p.matches, p.oracle, p.opts)
	if err != nil {
		return err
	}
	var errs []error
	for _, block := range blocks {
		if _, err := CollapseBlock(d, block, p.reduce); err != nil {
			var rerr *ReductionError
			if errors.As(err, &rerr) {
				errs = append(errs, err)
				continue
			}
			return err
		}
	}
	return errors.Join(errs...)
}

// RunCircuit converts a circuit to its dependency graph, runs the pass,
// and linearizes the result. The input circuit is not modified.
func (p *CollectAndCollapse) RunCircuit(c *Circuit) (*Circuit, error) {
	d := CircuitToDAG(c)
	if err := p.Run(d); err != nil {
		return nil, err
	}
	return d.ToCircuit(), nil
}
