package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Conveyor/internal/domain"
)

// LoadPlan читает plan из файла: .json — JSON, иначе YAML.
// "-" читает stdin (формат определяется по первому символу).
func LoadPlan(path string, stdin io.Reader) (*domain.Plan, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	if path == "-" {
		isJSON = bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
	}
	return ParsePlan(data, isJSON)
}

// ParsePlan разбирает plan; неизвестные поля — ошибка.
func ParsePlan(data []byte, isJSON bool) (*domain.Plan, error) {
	var plan domain.Plan

	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&plan); err != nil {
			return nil, fmt.Errorf("parse plan json: %w", err)
		}
		return &plan, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("parse plan yaml: %w", err)
	}
	return &plan, nil
}
