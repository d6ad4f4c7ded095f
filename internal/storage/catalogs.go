package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
)

// catalogLoader reads optional catalog override files from the data
// directory. A missing file falls back to the compiled-in defaults; a
// present but malformed file is an error so a bad deploy fails loudly.
type catalogLoader struct {
	dataDir string
	logger  *slog.Logger
}

func (c catalogLoader) loadTiers() (*reputation.TierCatalog, error) {
	path := filepath.Join(c.dataDir, "tiers.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reputation.DefaultTierCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read tier catalog: %w", err)
	}

	var catalog reputation.TierCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier catalog: %w", err)
	}
	if problems := catalog.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid tier catalog %s: %s", path, strings.Join(problems, "; "))
	}

	c.logger.Info("Loaded tier catalog override", "path", path, "tiers", len(catalog.Tiers))
	return &catalog, nil
}

func (c catalogLoader) loadActions() (*reputation.ActionCatalog, error) {
	path := filepath.Join(c.dataDir, "actions.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return reputation.DefaultActionCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read action catalog: %w", err)
	}

	var catalog reputation.ActionCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action catalog: %w", err)
	}
	if problems := catalog.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid action catalog %s: %s", path, strings.Join(problems, "; "))
	}

	c.logger.Info("Loaded action catalog override", "path", path, "actions", len(catalog.Actions))
	return reputation.NewActionCatalog(catalog.Actions), nil
}

func (c catalogLoader) loadEncounters() (*encounter.Catalog, error) {
	path := filepath.Join(c.dataDir, "encounters.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return encounter.DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read encounter catalog: %w", err)
	}

	var catalog encounter.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal encounter catalog: %w", err)
	}
	if problems := catalog.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid encounter catalog %s: %s", path, strings.Join(problems, "; "))
	}

	c.logger.Info("Loaded encounter catalog override", "path", path)
	return &catalog, nil
}
