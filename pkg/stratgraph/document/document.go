package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph"
)

// Version is the document format version written by Encode.
const Version = 1

// Format is a document serialisation.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat indicates an unknown format or file extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Document is the saved form of a strategy graph.
type Document struct {
	Version     int          `json:"version" yaml:"version" jsonschema:"title=Version,description=Document format version,enum=1" validate:"eq=1"`
	Nodes       []Node       `json:"nodes" yaml:"nodes" jsonschema:"title=Nodes,description=Nodes in insertion order. The first StrategyConfig is the program root" validate:"unique=ID,dive"`
	Connections []Connection `json:"connections" yaml:"connections" jsonschema:"title=Connections,description=Edges from an output port to an input port" validate:"dive"`
}

// Node is one saved node.
type Node struct {
	ID       string         `json:"id" yaml:"id" jsonschema:"title=ID,required" validate:"required"`
	Kind     string         `json:"kind" yaml:"kind" jsonschema:"title=Kind,required,enum=StrategyConfig,enum=FetchShortlist,enum=FetchShortlistPersistence,enum=FetchCandles,enum=FetchQuote,enum=FetchDates,enum=FetchHolidays,enum=PlaceOrder,enum=ForEach,enum=Conditional" validate:"required,nodekind"`
	Position Position       `json:"position" yaml:"position" jsonschema:"title=Position"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty" jsonschema:"title=Config,description=Kind-specific settings. Missing keys take the kind's defaults"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x" validate:"finite"`
	Y float64 `json:"y" yaml:"y" validate:"finite"`
}

// Connection is one saved edge.
type Connection struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty" jsonschema:"title=ID,description=Generated when empty"`
	Source       string `json:"source" yaml:"source" jsonschema:"required" validate:"required"`
	SourceOutput string `json:"sourceOutput" yaml:"sourceOutput" jsonschema:"required" validate:"required"`
	Target       string `json:"target" yaml:"target" jsonschema:"required" validate:"required"`
	TargetInput  string `json:"targetInput" yaml:"targetInput" jsonschema:"required" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nodekind", func(fl validator.FieldLevel) bool {
		return stratgraph.Kind(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Validate checks the document structure: version, required IDs, known
// kinds, unique node IDs and finite positions. It does not check that
// connections are legal; Build does.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

// Decode parses and validates a document.
func Decode(data []byte, format Format) (*Document, error) {
	var d Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a document from a .yaml, .yml or .json file.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	d, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Encode serialises the document with two-space indentation.
func (d *Document) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
