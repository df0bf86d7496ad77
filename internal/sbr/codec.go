package sbr

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadBundle decodes a ray-bundle export from r and validates its
// structural shape (links in arena range, known track types). The wire
// format is the bundle's JSON form; draw flags round-trip so annotated
// bundles can be handed to a renderer as files.
func ReadBundle(r io.Reader) (*RayBundle, error) {
	var b RayBundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("validate bundle: %w", err)
	}
	return &b, nil
}

// ReadBundleFile reads a bundle export from a file.
func ReadBundleFile(path string) (*RayBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return ReadBundle(f)
}

// WriteBundle encodes the bundle, including any annotation state, to w.
func WriteBundle(w io.Writer, b *RayBundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// WriteBundleFile writes the bundle to a file.
func WriteBundleFile(path string, b *RayBundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	if err := WriteBundle(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
