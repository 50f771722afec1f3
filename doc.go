// Package mdmath renders LaTeX equations selected in a Markdown document to
// SVG images and rewrites the selection to reference them.
//
// # Quick Start
//
// Create a command, run it against a host, and close it when done:
//
//	cmd, err := mdmath.NewCommand()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cmd.Close()
//
//	job, err := cmd.Run(ctx, host, mdmath.Invocation{
//	    DocumentPath:  "/work/notes/intro.md",
//	    WorkspaceRoot: "/work",
//	    Selection:     mdmath.Selection{Text: "$x^2$", Start: 10, End: 15},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = job.Wait(ctx)
//
// The host receives one edit turning the selection into
//
//	<!--$x^2$-->
//	![math](../svg/notes-intro-0a1b2c3d4e.svg)
//
// and the image is written to /work/svg/notes-intro-0a1b2c3d4e.svg.
//
// # Selections
//
// A selection is display math when wrapped in $$...$$ and inline math when
// wrapped in $...$, with at least one non-space character inside. Anything
// else is rejected with ErrInvalidEquation before any work starts.
//
// # Rendering
//
// Equations are typeset by MathJax 3 running in headless Chrome (go-rod).
// The edit does not wait for the render: if MathJax rejects the equation the
// edit stays and the host is told through ShowError. Job reports the outcome
// for callers that need it.
//
// Use EnginePool to share browsers between many concurrent invocations:
//
//	pool := mdmath.NewEnginePool(mdmath.ResolvePoolSize(0),
//	    mdmath.WithTimeout(time.Minute),
//	    mdmath.WithMathJaxSource("/opt/mathjax/es5/startup.js"),
//	)
//	defer pool.Close()
//	cmd, err := mdmath.NewCommand(mdmath.WithRenderer(pool))
//
// # Pruning
//
// Every render gets a fresh random name, so replaced equations leave images
// behind. Prune removes images no Markdown document references.
package mdmath
