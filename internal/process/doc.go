// Package process terminates the Chrome process tree left behind by the
// MathJax engine. Chrome forks renderer and GPU helpers that survive a plain
// kill of the parent, so the whole tree is targeted.
package process
