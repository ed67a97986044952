package filesystem

import (
	"encoding/json"
	"sort"
	"strings"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

// The legacy persisted shape: named steps cross-referencing named instruction blocks.
// Example:
//
//	{
//	  "enabled": true,
//	  "steps": { "Cohesion Check": { "enabled": true, "instructionBlocks": ["cohesion", "tone"] } },
//	  "instructionBlocks": { "cohesion": { "enabled": true, "text": "..." } }
//	}
type legacyConfiguration struct {
	Enabled           bool                               `json:"enabled"`
	Steps             map[string]*legacyStep             `json:"steps"`
	InstructionBlocks map[string]*legacyInstructionBlock `json:"instructionBlocks"`
}

type legacyStep struct {
	Enabled           bool     `json:"enabled"`
	InstructionBlocks []string `json:"instructionBlocks"`
}

type legacyInstructionBlock struct {
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// migrateLegacyConfiguration converts the legacy shape to the current ordered-sequence-of-steps
// shape. The legacy step map carries no order, so step names are ordered lexicographically to
// make repeated migrations of the same file deterministic. Each migrated step's instructions
// are the concatenation of its enabled referenced blocks; steps whose instructions come out
// blank are dropped. If nothing usable survives, the built-in defaults are substituted.
func migrateLegacyConfiguration(data []byte, logger common.Logger) *domain.Configuration {
	var legacyConfig legacyConfiguration
	err := json.Unmarshal(data, &legacyConfig)
	if err != nil {
		logger.Log("unable to parse persisted settings, falling back to defaults: " + err.Error() + "\n")
		return domain.NewDefaultConfiguration()
	}
	if len(legacyConfig.Steps) == 0 {
		return domain.NewDefaultConfiguration()
	}
	stepNames := make([]string, 0, len(legacyConfig.Steps))
	for stepName := range legacyConfig.Steps {
		stepNames = append(stepNames, stepName)
	}
	sort.Strings(stepNames)
	config := &domain.Configuration{
		Enabled: legacyConfig.Enabled,
	}
	for _, stepName := range stepNames {
		legacyStep := legacyConfig.Steps[stepName]
		instructions := concatInstructionBlocks(legacyStep, legacyConfig.InstructionBlocks)
		if strings.TrimSpace(instructions) == "" {
			logger.Log("dropping legacy step \"" + stepName + "\" with no usable instructions\n")
			continue
		}
		config.Steps = append(config.Steps, domain.NewRefinementStep(stepName, instructions, legacyStep.Enabled))
	}
	if len(config.Steps) == 0 {
		return domain.NewDefaultConfiguration()
	}
	return config
}

func concatInstructionBlocks(legacyStep *legacyStep, blocks map[string]*legacyInstructionBlock) string {
	var texts []string
	for _, blockName := range legacyStep.InstructionBlocks {
		block, ok := blocks[blockName]
		if !ok || !block.Enabled {
			continue
		}
		if strings.TrimSpace(block.Text) == "" {
			continue
		}
		texts = append(texts, strings.TrimSpace(block.Text))
	}
	return strings.Join(texts, "\n\n")
}
