package mdmath

import "context"

// Job tracks the background render of one invocation.
type Job struct {
	Equation string
	Style    RenderStyle
	Location OutputLocation

	done chan struct{}
	err  error
}

func newJob(equation string, style RenderStyle, loc OutputLocation) *Job {
	return &Job{
		Equation: equation,
		Style:    style,
		Location: loc,
		done:     make(chan struct{}),
	}
}

func (j *Job) finish(err error) {
	j.err = err
	close(j.done)
}

// Done is closed once the image has been written or the render has failed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the render or persistence error. It is only meaningful after Done.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the job finishes or ctx ends, and returns the job's error
// or the context's.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
