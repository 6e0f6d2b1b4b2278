// Package output provides styled terminal output for the wren CLI.
//
// # Overview
//
// Status messages go to standard error so that standard output only ever
// carries the captured output of the child process.
//
// # Usage
//
//	output.Success("tests passed")
//	output.Info("running go test ./...")
//	output.Step("wren exec test")
//	output.Error("Subprocess execution failed (exit 1): ...")
//
// # Verbose Mode
//
//	output.SetVerbose(true)
//	output.Verbose("loaded config from wren.yml")
//
// # Stream Writer
//
// StreamWriter wraps a single sink with WriteStr and Flush. Loading
// patterns tick through it and the invoker uses it to terminate the
// indicator line before an error is shown:
//
//	sw := output.NewStreamWriter(os.Stderr)
//	sw.WriteStr(".")
//	sw.Flush()
//
// # Styling
//
//   - Success: ✔ green bold
//   - Error: ✖ red bold
//   - Info: cyan
//   - Step: indented gray
//   - Verbose: gray (when enabled)
package output
