// Package pkg provides the libraries behind the floorplan tool.
//
// # Overview
//
// A floorplanner places rectangular modules so that their enclosing bounding
// box is small. Modules are arranged by a slicing tree: every internal node
// cuts its rectangle vertically or horizontally, every leaf is one module.
// Simulated annealing perturbs the tree and keeps the smallest placement it
// finds. The packages are organized into three areas:
//
//  1. [floorplan] - Domain logic (modules, slicing trees, annealing)
//  2. [pipeline] - Orchestration (optimize → check → render) with caching
//  3. Supporting packages ([io], [render], [cache], [config], [errors])
//
// # Architecture
//
// The typical data flow:
//
//	Module list (text)
//	         ↓
//	    [io] package (parse and validate modules)
//	         ↓
//	    [floorplan/slicing] package (initial tree + packer)
//	         ↓
//	    [floorplan/anneal] package (search for a smaller area)
//	         ↓
//	    [render] package (SVG/PNG/PDF/JSON)
//
// # Quick Start
//
//	store, _ := module.NewStore([]module.Module{
//	    {ID: 0, W: 2, H: 3},
//	    {ID: 1, W: 4, H: 1},
//	    {ID: 2, W: 1, H: 5},
//	})
//	tree, _ := slicing.Build(store)
//	res, _ := anneal.Optimize(tree, anneal.DefaultSchedule(), 42)
//	svg := render.SVG(res.Modules, render.WithLabels(true))
//
// Or through the pipeline, which adds validation and caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, mods, pipeline.Options{Formats: []string{"svg"}})
//
// # Main Packages
//
// [floorplan/module] - Module geometry, the index-addressed [module.Store]
// and overlap detection.
//
// [floorplan/slicing] - Arena-backed slicing trees, polish expressions, the
// packer and the four perturbation moves.
//
// [floorplan/anneal] - Cooling schedule, move weights and the annealer.
//
// [pipeline] - The optimize and render stages used by the CLI and the HTTP
// server, so both behave the same.
//
// [cache] - File, Redis and null caches for runs and rendered artifacts.
//
// [observability] - Hooks for annealing, pipeline and cache events.
//
// [floorplan]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/floorplan
// [floorplan/module]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module
// [floorplan/slicing]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/slicing
// [floorplan/anneal]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal
// [pipeline]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/io
// [render]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/render
// [cache]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/cache
// [config]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/config
// [errors]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/errors
// [observability]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/observability
// [module.Store]: https://pkg.go.dev/github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module#Store
package pkg
