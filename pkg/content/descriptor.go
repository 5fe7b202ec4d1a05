package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaptinlin/jsonrepair"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/encoding"
)

// Descriptor is the sidecar JSON carried alongside every TAF file.
type Descriptor struct {
	Source     string                  `json:"source"`
	TonieModel string                  `json:"tonie_model"`
	Live       bool                    `json:"live"`
	NoCloud    bool                    `json:"nocloud"`
	CloudAuth  encoding.StdBase64Data  `json:"cloud_auth,omitempty"`

	// Derived fields, recomputed on every read and never trusted from disk.
	HasCloudAuth bool `json:"_has_cloud_auth"`
	Valid        bool `json:"_valid"`
}

// deriveFields recomputes the Descriptor's derived fields in place.
func (d *Descriptor) deriveFields(parsedOK bool) {
	d.HasCloudAuth = len(d.CloudAuth) == 32
	d.Valid = parsedOK
}

// ReadDescriptor parses the sidecar JSON at path. A missing file yields a
// zero-value, invalid Descriptor rather than an error — callers check
// Valid. Malformed-but-recoverable JSON is repaired via jsonrepair before a
// second parse attempt, matching how the rest of this codebase tolerates
// hand-edited config files.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Descriptor{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	var d Descriptor
	err = json.Unmarshal(data, &d)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if !asSyntaxError(err, &syntaxErr) {
			d.deriveFields(false)
			return &d, nil
		}
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			d.deriveFields(false)
			return &d, nil
		}
		if uerr := json.Unmarshal([]byte(repaired), &d); uerr != nil {
			d.deriveFields(false)
			return &d, nil
		}
	}

	d.deriveFields(true)
	return &d, nil
}

func asSyntaxError(err error, target **json.SyntaxError) bool {
	se, ok := err.(*json.SyntaxError)
	if !ok {
		return false
	}
	*target = se
	return true
}

// WriteDescriptor writes d as pretty-printed JSON to path atomically
// (temp file + rename).
func WriteDescriptor(path string, d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".descriptor-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}
