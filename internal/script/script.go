// Package script loads YAML conversation scripts for the demo
// binary: an ordered sequence of dialogue steps, each typing some
// text and optionally asking for input through one of the
// interactors.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gabtab/gabtab/internal/paging"
)

// Script is one conversation.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one dialogue turn. Say lines are typed first; Ask, when
// present, then collects input.
type Step struct {
	Say     []string `yaml:"say,omitempty"`      // Lines typed into the box
	Clear   bool     `yaml:"clear,omitempty"`    // Erase the box first
	PauseMs int      `yaml:"pause_ms,omitempty"` // Pause after the lines
	Ask     *Ask     `yaml:"ask,omitempty"`
}

// Ask describes the input phase of a step. Exactly one of the
// kind-specific sections must match Kind.
type Ask struct {
	Kind    string      `yaml:"kind"`               // buttons, input or list
	StoreAs string      `yaml:"store_as,omitempty"` // Variable name for the result
	Buttons []ButtonDef `yaml:"buttons,omitempty"`
	Input   *InputDef   `yaml:"input,omitempty"`
	List    *ListDef    `yaml:"list,omitempty"`
}

// ButtonDef is one button of a buttons ask.
type ButtonDef struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// InputDef configures an input ask.
type InputDef struct {
	Placeholder string   `yaml:"placeholder,omitempty"`
	MaxLen      int      `yaml:"max_len,omitempty"`
	Required    bool     `yaml:"required,omitempty"` // Reject empty values
	Forbid      []string `yaml:"forbid,omitempty"`   // Values rejected with a retry
}

// ListDef configures a list ask. Zero values defer to the loaded
// configuration's list defaults.
type ListDef struct {
	Items           []string `yaml:"items"`
	MultiSelect     bool     `yaml:"multi_select,omitempty"`
	RequireContinue bool     `yaml:"require_continue,omitempty"`
	Slots           int      `yaml:"slots,omitempty"`
	Paging          string   `yaml:"paging,omitempty"`
	Forbid          []string `yaml:"forbid,omitempty"` // Items that fail validation
}

// Load reads and validates a script file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("reading script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates script YAML.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks the script for wiring errors that would only
// surface mid-conversation.
func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if len(step.Say) == 0 && step.Ask == nil && !step.Clear && step.PauseMs <= 0 {
			return fmt.Errorf("step %d does nothing", i)
		}
		if step.Ask == nil {
			continue
		}
		if err := step.Ask.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (a *Ask) validate() error {
	switch a.Kind {
	case "buttons":
		if len(a.Buttons) == 0 {
			return fmt.Errorf("buttons ask needs at least one button")
		}
		seen := make(map[string]bool, len(a.Buttons))
		for _, b := range a.Buttons {
			if b.Key == "" {
				return fmt.Errorf("button with empty key")
			}
			if seen[b.Key] {
				return fmt.Errorf("duplicate button key %q", b.Key)
			}
			seen[b.Key] = true
		}
	case "input":
		// Input section is optional; zero values are usable.
	case "list":
		if a.List == nil || len(a.List.Items) == 0 {
			return fmt.Errorf("list ask needs items")
		}
		if a.List.Paging != "" {
			if _, err := paging.ParseMode(a.List.Paging); err != nil {
				return err
			}
		}
		if a.List.Slots < 0 {
			return fmt.Errorf("list slots must not be negative")
		}
	default:
		return fmt.Errorf("unknown ask kind %q", a.Kind)
	}
	return nil
}
