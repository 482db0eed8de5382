// Package inventory canonicalizes raw tool descriptors into the step list
// pushed to the control plane, and computes the content fingerprint used to
// detect inventory change.
package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/clawsec/toolgate/internal/domain"
)

// Canonicalize folds raw descriptors into an ordered, name-unique step list.
// Entries without a name are dropped. A later descriptor with a duplicate
// name fully replaces the earlier one but keeps its original position.
func Canonicalize(raw []domain.RawToolDescriptor) []domain.ToolStep {
	steps := make([]domain.ToolStep, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, d := range raw {
		if d.Name == "" {
			continue
		}
		step := toStep(d)
		if i, ok := index[d.Name]; ok {
			steps[i] = step
			continue
		}
		index[d.Name] = len(steps)
		steps = append(steps, step)
	}
	return steps
}

func toStep(d domain.RawToolDescriptor) domain.ToolStep {
	step := domain.ToolStep{Name: d.Name}

	switch {
	case d.Description != "":
		step.Description = d.Description
	case d.Label != "":
		step.Description = d.Label
	}

	// Only a plain object is usable as a schema; arrays, scalars and null
	// are dropped.
	if schema, ok := d.Parameters.(map[string]any); ok {
		step.InputSchema = schema
	}

	if d.Label != "" {
		step.Metadata = &domain.ToolStepMetadata{Label: d.Label}
	}
	return step
}

// Fingerprint hashes an ordered step list. encoding/json emits map keys in
// sorted order, so equal step lists always serialize identically.
func Fingerprint(steps []domain.ToolStep) string {
	payload, err := json.Marshal(steps)
	if err != nil {
		// Steps come from decoded JSON and our own structs; marshalling
		// them cannot fail. Hash the error text so the fingerprint still
		// differs from any real inventory.
		payload = []byte("unserializable:" + err.Error())
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
