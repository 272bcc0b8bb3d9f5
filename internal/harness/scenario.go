package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cycler/internal/document"
	"github.com/roach88/cycler/internal/rig"
)

// Scenario defines a scheduler test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the inline rig document, including seed curves.
	Document document.File `yaml:"document"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and curve state.
	Assertions []Assertion `yaml:"assertions"`

	// FlowToken is an optional fixed flow token for deterministic tests.
	// If empty, defaults to testutil.DefaultFlowToken.
	FlowToken string `yaml:"flow_token,omitempty"`

	// Budget is the per-tick time budget. Defaults to engine.DefaultBudget.
	Budget time.Duration `yaml:"budget,omitempty"`

	// JobCost advances the manual clock on every budget check. Zero keeps
	// the clock frozen, so every tick drains the queue.
	JobCost time.Duration `yaml:"job_cost,omitempty"`

	// AutoUpdate enables AUTO_UPDATE on idle ticks. Defaults to true.
	AutoUpdate *bool `yaml:"auto_update,omitempty"`
}

// ChannelRef names a channel in steps and assertions.
type ChannelRef struct {
	Control string `yaml:"control"`
	Type    string `yaml:"type"`
	Axis    string `yaml:"axis"`
}

// Key parses the reference into a channel key.
func (c ChannelRef) Key() (rig.ChannelKey, error) {
	t, err := rig.ParseChannelType(c.Type)
	if err != nil {
		return rig.ChannelKey{}, err
	}
	a, err := rig.ParseAxis(c.Axis)
	if err != nil {
		return rig.ChannelKey{}, err
	}
	return rig.ChannelKey{Control: rig.NormalizeName(c.Control), Type: t, Axis: a}, nil
}

// Step is one host action. Which fields apply depends on Action.
type Step struct {
	// Action is one of the Step* constants.
	Action string `yaml:"action"`

	// Count is the number of ticks (tick). Defaults to 1.
	Count int `yaml:"count,omitempty"`

	// Channel and Keyframe address a keyframe (offset) or a curve (set_point).
	Channel  *ChannelRef `yaml:"channel,omitempty"`
	Keyframe int         `yaml:"keyframe,omitempty"`

	// Marker names the marker (marker_length, remove_marker).
	Marker string `yaml:"marker,omitempty"`

	// Value is the new marker length, offset or point value.
	Value *float64 `yaml:"value,omitempty"`

	// Frame is the point frame (set_point).
	Frame int `yaml:"frame,omitempty"`

	// Length and FrameRate are the new timeline size (resize, length, fps).
	Length    int `yaml:"length,omitempty"`
	FrameRate int `yaml:"frame_rate,omitempty"`
}

// Step action constants.
const (
	StepTick         = "tick"
	StepDrain        = "drain"
	StepUpdate       = "update"
	StepMarkerLength = "marker_length"
	StepRemoveMarker = "remove_marker"
	StepOffset       = "offset"
	StepResize       = "resize"
	StepFPS          = "fps"
	StepLength       = "length"
	StepSetPoint     = "set_point"
)

// Assertion validates trace or final curve state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Channel selects the curve (point, absent, count).
	Channel *ChannelRef `yaml:"channel,omitempty"`

	// Frame is the point frame (point, absent).
	Frame int `yaml:"frame,omitempty"`

	// Value is the expected point value (point).
	Value *float64 `yaml:"value,omitempty"`

	// Count is the expected number of points (count) or jobs (trace_count).
	Count *int `yaml:"count,omitempty"`

	// Kind is the job kind (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Code restricts trace_count to jobs that failed with this error code.
	Code string `yaml:"code,omitempty"`

	// Kinds is the expected kind order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertPoint      = "point"
	AssertAbsent     = "absent"
	AssertCount      = "count"
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Budget < 0 || s.JobCost < 0 {
		return fmt.Errorf("budget and job_cost must not be negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	needChannel := func() error {
		if s.Channel == nil {
			return fmt.Errorf("steps[%d]: channel is required for %s", index, s.Action)
		}
		if _, err := s.Channel.Key(); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		return nil
	}
	needValue := func() error {
		if s.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for %s", index, s.Action)
		}
		return nil
	}

	switch s.Action {
	case StepTick, StepDrain, StepUpdate:
		return nil
	case StepMarkerLength:
		if s.Marker == "" {
			return fmt.Errorf("steps[%d]: marker is required for %s", index, s.Action)
		}
		return needValue()
	case StepRemoveMarker:
		if s.Marker == "" {
			return fmt.Errorf("steps[%d]: marker is required for %s", index, s.Action)
		}
		return nil
	case StepOffset, StepSetPoint:
		if err := needChannel(); err != nil {
			return err
		}
		return needValue()
	case StepResize:
		if s.Length <= 0 || s.FrameRate <= 0 {
			return fmt.Errorf("steps[%d]: length and frame_rate are required for resize", index)
		}
		return nil
	case StepFPS:
		if s.FrameRate <= 0 {
			return fmt.Errorf("steps[%d]: frame_rate is required for fps", index)
		}
		return nil
	case StepLength:
		if s.Length <= 0 {
			return fmt.Errorf("steps[%d]: length is required for length", index)
		}
		return nil
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Action)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPoint, AssertAbsent, AssertCount:
		if a.Channel == nil {
			return fmt.Errorf("assertions[%d]: channel is required for %s", index, a.Type)
		}
		if _, err := a.Channel.Key(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Type == AssertPoint && a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for point", index)
		}
		if a.Type == AssertCount && a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for count", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
