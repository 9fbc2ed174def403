package diag

import (
	"bytes"
	"encoding/json"
)

// ToJSON encodes a Report deterministically: struct field order is fixed by
// the type definition and map-valued Data is sorted by key by
// encoding/json, so two processes given the same Report always produce
// byte-identical output (needed for golden-file diagnostic tests).
func (r *Report) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeAll encodes every report in the sink as a JSON array, in emission
// order, for the `--format json` driver mode (spec §6 rendering is
// pluggable; this is one renderer).
func (s *Sink) EncodeAll() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Reports()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
