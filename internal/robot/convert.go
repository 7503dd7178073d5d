package robot

import (
	"context"
	"fmt"
	"strings"
)

// Prefixes that denote remote resources.
var remoteProtocols = []string{
	"https://",
	"http://",
	"ftp://",
	"ftps://",
}

// IsRemote reports whether input is an IRI rather than a local file path.
func IsRemote(input string) bool {
	for _, protocol := range remoteProtocols {
		if strings.HasPrefix(input, protocol) {
			return true
		}
	}
	return false
}

const (
	InputFlagLocal  = "-i"
	InputFlagRemote = "-I"
)

// ConvertRequest describes a ROBOT convert pipeline. Zero values match
// ROBOT defaults: a plain convert with document-structure checks enabled.
type ConvertRequest struct {
	// InputPath is a local file path or an IRI.
	InputPath string
	// OutputPath is the local file to write; ROBOT infers the format from
	// its extension unless Format is set.
	OutputPath string
	// InputFlag is "-i" (local) or "-I" (remote). Inferred from InputPath
	// when empty.
	InputFlag string
	// Merge squashes all graphs together before converting.
	Merge bool
	// Reason turns on ontology reasoning.
	Reason bool
	// NoCheck disables the OBO writer's document structure rules
	// (--check=false).
	NoCheck bool
	// Format explicitly sets the output format.
	Format string
	// Debug turns on -vvv.
	Debug bool
	// ExtraArgs are appended to the command line after the output flag.
	ExtraArgs []string
}

// Args builds the ROBOT command line for the request.
func (req *ConvertRequest) Args() ([]string, error) {
	if req.InputPath == "" {
		return nil, fmt.Errorf("convert: input path is required")
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("convert: output path is required")
	}

	inputFlag := req.InputFlag
	switch inputFlag {
	case "":
		inputFlag = InputFlagLocal
		if IsRemote(req.InputPath) {
			inputFlag = InputFlagRemote
		}
	case InputFlagLocal, InputFlagRemote:
	default:
		return nil, fmt.Errorf("convert: unknown input flag: %s", inputFlag)
	}

	var args []string
	switch {
	case req.Merge && !req.Reason:
		args = append(args, "merge", inputFlag, req.InputPath, "convert")
	case req.Merge && req.Reason:
		args = append(args, "merge", inputFlag, req.InputPath, "reason", "convert")
	case !req.Merge && req.Reason:
		args = append(args, "reason", inputFlag, req.InputPath, "convert")
	default:
		args = append(args, "convert", inputFlag, req.InputPath)
	}

	args = append(args, "-o", req.OutputPath)
	args = append(args, req.ExtraArgs...)
	if req.NoCheck {
		args = append(args, "--check=false")
	}
	if req.Format != "" {
		args = append(args, "--format", req.Format)
	}
	if req.Debug {
		args = append(args, "-vvv")
	}
	return args, nil
}

// Convert converts an ontology with ROBOT and returns its stdout.
func (r *Runner) Convert(ctx context.Context, req *ConvertRequest) (string, error) {
	args, err := req.Args()
	if err != nil {
		return "", err
	}
	return r.Call(ctx, args)
}
