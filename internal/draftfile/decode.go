// Package draftfile reads invoice drafts and stock snapshots from JSON or
// YAML files shaped like the invoicing API payloads.
package draftfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/invoicing/internal/inventory"
	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// Format identifies the file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("draftfile: unsupported format")

// ErrDecode wraps any syntax or shape error in the file.
var ErrDecode = errors.New("draftfile: decode failed")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Draft is the raw content of a draft file, ready for the parse boundary.
type Draft struct {
	Header invoicing.RawHeader
	Items  []invoicing.RawLineItem
}

// Load reads and decodes the draft file at path.
func Load(path string) (Draft, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Draft{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Draft{}, err
	}
	defer f.Close()
	draft, err := Decode(f, format)
	if err != nil {
		return Draft{}, fmt.Errorf("%s: %w", path, err)
	}
	return draft, nil
}

// Decode reads one draft document from r.
func Decode(r io.Reader, format Format) (Draft, error) {
	var doc draftDoc
	if err := decode(r, format, &doc); err != nil {
		return Draft{}, err
	}
	return doc.raw(), nil
}

// LoadLedger reads the stock snapshot at path.
func LoadLedger(path string) (inventory.Ledger, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ledger, err := DecodeLedger(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ledger, nil
}

// DecodeLedger reads a product to quantity mapping from r.
func DecodeLedger(r io.Reader, format Format) (inventory.Ledger, error) {
	var doc map[string]Value
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	raw := make(map[string]string, len(doc))
	for product, qty := range doc {
		raw[product] = string(qty)
	}
	return invoicing.ParseLedger(raw)
}

func decode(r io.Reader, format Format, dst any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}
