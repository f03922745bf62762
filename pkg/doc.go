// Package pkg provides the core libraries for commit-view.
//
// # Overview
//
// commit-view turns a local Git repository's commit graph into a static
// SVG diagram. The pkg directory is organized by pipeline stage:
//
//  1. [gitrepo] - Repository access (branches, commits, diff stats)
//  2. [dag] - Commit graph structure with branch attribution
//  3. [layout] - Grid placement (topological rows, branch lanes)
//  4. [render] - Diagram emission (timeline SVG, Graphviz node-link)
//  5. [pipeline] - Orchestration (read → build → layout → render)
//  6. [graph] - JSON serialization of laid-out graphs
//
// Supporting packages: [cache] (diff-stat cache), [errors] (structured
// error codes), [buildinfo] (ldflags version data).
//
// # Quick Start
//
// Run the full pipeline against a repository:
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "."})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pkg
