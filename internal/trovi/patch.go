package trovi

import (
	"encoding/json"
	"fmt"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// JSON Patch operations understood by the service.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Patch is a single RFC 6902 operation.
type Patch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// ReplaceOp replaces the value at path.
func ReplaceOp(path string, value any) Patch {
	return Patch{Op: OpReplace, Path: path, Value: value}
}

// AddOp adds value at path. A path ending in "/-" appends to an array.
func AddOp(path string, value any) Patch {
	return Patch{Op: OpAdd, Path: path, Value: value}
}

// IndexPath returns the pointer to element i of the array at field.
func IndexPath(field string, i int) string {
	return "/" + field + "/" + strconv.Itoa(i)
}

// AppendPath returns the pointer appending to the array at field.
func AppendPath(field string) string {
	return "/" + field + "/-"
}

// ApplyPatches applies patches to a copy of doc. The input is not modified.
// Adds create missing parents, so appending to an absent list succeeds the
// way it does server-side.
func ApplyPatches(doc Artifact, patches []Patch) (Artifact, error) {
	original, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	ops, err := json.Marshal(patches)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	opts := jsonpatch.NewApplyOptions()
	opts.EnsurePathExistsOnAdd = true
	patched, err := patch.ApplyWithOptions(original, opts)
	if err != nil {
		return nil, fmt.Errorf("patch does not apply: %w", err)
	}

	var out Artifact
	if err := json.Unmarshal(patched, &out); err != nil {
		return nil, fmt.Errorf("failed to decode patched artifact: %w", err)
	}
	return out, nil
}
