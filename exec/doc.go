// Package exec runs external processes behind a loading pattern.
//
// The package has four parts:
//
// 1. Normalize - turns raw output chunks (bytes or text) into text
// 2. LoadingPattern - a callback ticked while the child is alive
// 3. Invoker - launches the child, drains stdout/stderr concurrently and
// translates failures into *LoadingPatternError
// 4. CommandRegistry - named commands that run through an Invoker
//
// # Basic Usage
//
//	inv := exec.NewInvoker(nil)
//	out, err := inv.Invoke(ctx, exec.ProcessSpec{Args: []string{"go", "test", "./..."}}, nil, nil, false)
//	var lpErr *exec.LoadingPatternError
//	if errors.As(err, &lpErr) {
//	    fmt.Println(lpErr.ExitCode, lpErr.Stderr)
//	}
//
// # Modes
//
// The mode is fixed when Invoke starts. In pass-through mode (isDebug, or
// a debug log level) every stdout line is relayed through the logger as it
// arrives and the loading pattern stays quiet. In ticking mode output is
// buffered and the pattern runs every Rate until the child exits.
//
// # Redirects
//
// ProcessSpec.Stdout and ProcessSpec.Stderr choose between capturing,
// discarding and (for stderr) merging into stdout. Unset stderr is a pipe
// on Unix and merged into stdout on Windows.
package exec
