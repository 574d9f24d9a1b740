package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

// ErrUnsupportedFormat is returned for catalog files that are neither CSV nor YAML.
var ErrUnsupportedFormat = errors.New("catalog file must be .csv, .yaml or .yml")

// Column aliases accepted in CSV headers. The Spanish names match the
// library inventory exports the catalog is usually seeded from.
var csvColumns = map[string][]string{
	"id":     {"id", "isbn"},
	"title":  {"title", "titulo"},
	"weight": {"weight", "peso"},
	"value":  {"value", "valor"},
}

type yamlCatalog struct {
	Items []yamlItem `yaml:"items"`
}

type yamlItem struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Weight float64 `yaml:"weight"`
	Value  float64 `yaml:"value"`
}

// LoadFile reads catalog items from a CSV or YAML file chosen by extension
// and returns them normalised.
func LoadFile(path string) ([]shelving.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var items []shelving.Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		items, err = ReadCSV(f)
	case ".yaml", ".yml":
		items, err = ReadYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	return NormalizeItems(items)
}

// ReadCSV parses items from CSV with a header row. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]shelving.Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var items []shelving.Item
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(record[index["weight"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid weight %q", line, record[index["weight"]])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[index["value"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q", line, record[index["value"]])
		}

		item := shelving.Item{
			ID:     record[index["id"]],
			Weight: weight,
			Value:  value,
		}
		if pos, ok := index["title"]; ok {
			item.Title = record[pos]
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadYAML parses items from a document with a top-level "items" list.
func ReadYAML(r io.Reader) ([]shelving.Item, error) {
	var doc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	items := make([]shelving.Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, shelving.Item{
			ID:     it.ID,
			Title:  it.Title,
			Weight: it.Weight,
			Value:  it.Value,
		})
	}
	return items, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(csvColumns))
	for pos, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		for column, aliases := range csvColumns {
			for _, alias := range aliases {
				if name == alias {
					if _, ok := index[column]; !ok {
						index[column] = pos
					}
				}
			}
		}
	}

	for _, required := range []string{"id", "weight", "value"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}
	return index, nil
}
