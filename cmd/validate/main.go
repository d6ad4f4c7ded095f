package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <tiers.json|actions.json|encounters.json> [...]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &CatalogValidator{}
	failed := false
	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	v.errors = nil

	switch base := filepath.Base(filename); base {
	case "tiers.json":
		v.validateTiers(data)
	case "actions.json":
		v.validateActions(data)
	case "encounters.json":
		v.validateEncounters(data)
	default:
		return fmt.Errorf("unknown catalog file %s: expected tiers.json, actions.json or encounters.json", base)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CatalogValidator) validateTiers(data []byte) {
	var c reputation.TierCatalog
	if err := v.strictDecode(data, &c); err != nil {
		return
	}

	for _, p := range c.Validate() {
		v.addError(p)
	}
	for _, t := range c.Tiers {
		v.validateIDFormat("tier ID", t.ID)
		for _, trig := range t.Triggers {
			v.validateIDFormat("trigger effect ID", trig.EffectID)
		}
		for _, tag := range t.Effects.SpecialAccess {
			v.validateIDFormat("special access tag", tag)
		}
	}
}

func (v *CatalogValidator) validateActions(data []byte) {
	var c reputation.ActionCatalog
	if err := v.strictDecode(data, &c); err != nil {
		return
	}

	for _, p := range c.Validate() {
		v.addError(p)
	}
	for _, a := range c.Actions {
		v.validateIDFormat("action ID", a.ID)
	}
}

func (v *CatalogValidator) validateEncounters(data []byte) {
	var c encounter.Catalog
	if err := v.strictDecode(data, &c); err != nil {
		return
	}

	for _, p := range c.Validate() {
		v.addError(p)
	}
	for locationType := range c.Location {
		v.validateIDFormat("location type", locationType)
	}
	for eventKind := range c.WorldEvent {
		v.validateIDFormat("world event kind", eventKind)
	}
}

func (v *CatalogValidator) strictDecode(data []byte, target interface{}) error {
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		v.addError(fmt.Sprintf("strict JSON unmarshaling failed: %v", err))
		return err
	}
	return nil
}

func (v *CatalogValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
