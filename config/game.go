package config

import (
	"fmt"
	"os"

	"github.com/Arvi89/planning-taki/models"
)

// LoadScales returns the built-in decks merged with the optional scales file.
func (g GameConfig) LoadScales() (models.Scales, error) {
	scales := models.BuiltinScales()
	if g.ScalesFile == "" {
		return scales, nil
	}

	data, err := os.ReadFile(g.ScalesFile)
	if err != nil {
		return nil, fmt.Errorf("read scales %s: %w", g.ScalesFile, err)
	}
	extra, err := models.ParseScales(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.ScalesFile, err)
	}
	for name, sc := range extra {
		scales[name] = sc
	}
	return scales, nil
}

// Rules turns the game section into session rules.
func (g GameConfig) Rules(scales models.Scales) (models.Rules, error) {
	scale, ok := scales[g.Scale]
	if !ok {
		return models.Rules{}, fmt.Errorf("config: unknown game.scale %q", g.Scale)
	}
	return models.Rules{
		Scale:           scale,
		InitialDisputes: g.InitialDisputes,
		ExplainTime:     g.ExplainTime,
		DiscussTime:     g.DiscussTime,
		ReprDiscussTime: g.ReprDiscussTime,
		MaxTitleLength:  g.MaxTitleLength,
		MaxNameLength:   g.MaxNameLength,
	}, nil
}
