package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateTimeLayout is the layout used for date_time metadata attributes
const DateTimeLayout = "02/01/2006 15:04:05"

// Binding associates an action label with a key sequence
type Binding struct {
	ID      string `json:"id" yaml:"id"`
	Action  string `json:"action" yaml:"action"`
	Key     string `json:"key" yaml:"key"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// NewBinding creates an enabled binding with a fresh stable ID
func NewBinding(action, key string) Binding {
	return Binding{
		ID:      uuid.NewString(),
		Action:  action,
		Key:     key,
		Enabled: true,
	}
}

// SavingOptions is the persistence configuration embedded in every preset
type SavingOptions struct {
	BasePath        string `json:"basePath" yaml:"base_path"`
	BaseName        string `json:"baseName" yaml:"base_name"`
	ScanPrefix      string `json:"scanPrefix" yaml:"scan_prefix"`
	DoSave          bool   `json:"doSave" yaml:"do_save"`
	CustomName      string `json:"customName,omitempty" yaml:"custom_name,omitempty"`
	CurrentFile     string `json:"currentFile,omitempty" yaml:"current_file,omitempty"`
	CurrentScanName string `json:"currentScanName,omitempty" yaml:"current_scan_name,omitempty"`
	CurrentScanPath string `json:"currentScanPath,omitempty" yaml:"current_scan_path,omitempty"`
}

// HiddenSavingOptions lists the saving options not shown to the operator
var HiddenSavingOptions = []string{"do_save", "custom_name", "current_file", "current_scan_name", "current_scan_path"}

// DefaultSavingOptions returns the saving options of a new preset
func DefaultSavingOptions() SavingOptions {
	return SavingOptions{
		BaseName:   "Dataset",
		ScanPrefix: "Scan",
		DoSave:     true,
	}
}

// Preset is a named, ordered list of shortcut bindings
type Preset struct {
	Filename      string        `json:"filename" yaml:"filename"`
	Author        string        `json:"author" yaml:"author"`
	SavingOptions SavingOptions `json:"savingOptions" yaml:"saving_options"`
	Actions       []Binding     `json:"actions" yaml:"actions"`
}

// NewPreset creates an empty preset
func NewPreset(filename, author string) *Preset {
	return &Preset{
		Filename:      filename,
		Author:        author,
		SavingOptions: DefaultSavingOptions(),
		Actions:       []Binding{},
	}
}

// Binding returns the binding with the given ID
func (p *Preset) Binding(id string) (Binding, bool) {
	for _, b := range p.Actions {
		if b.ID == id {
			return b, true
		}
	}
	return Binding{}, false
}

// AddBinding appends a new binding and returns it
func (p *Preset) AddBinding(action, key string) Binding {
	b := NewBinding(action, key)
	p.Actions = append(p.Actions, b)
	return b
}

// RemoveBinding removes the binding with the given ID
func (p *Preset) RemoveBinding(id string) bool {
	for i, b := range p.Actions {
		if b.ID == id {
			p.Actions = append(p.Actions[:i], p.Actions[i+1:]...)
			return true
		}
	}
	return false
}

// SetEnabled updates the enabled flag of a binding
func (p *Preset) SetEnabled(id string, enabled bool) bool {
	for i := range p.Actions {
		if p.Actions[i].ID == id {
			p.Actions[i].Enabled = enabled
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the preset
func (p *Preset) Clone() *Preset {
	clone := *p
	clone.Actions = make([]Binding, len(p.Actions))
	copy(clone.Actions, p.Actions)
	return &clone
}

// EnsureIDs assigns IDs to bindings loaded without one
func (p *Preset) EnsureIDs() {
	for i := range p.Actions {
		if strings.TrimSpace(p.Actions[i].ID) == "" {
			p.Actions[i].ID = uuid.NewString()
		}
	}
}

// Event is a single recorded behavioural event
type Event struct {
	Elapsed   float64 `json:"elapsed"`
	Action    string  `json:"action"`
	SubjectID *int    `json:"subjectId,omitempty"`
}

// DatasetInfo is the metadata captured once per container
type DatasetInfo struct {
	Author         string    `json:"author"`
	DateTime       time.Time `json:"dateTime"`
	Sample         string    `json:"sample"`
	ExperimentType string    `json:"experimentType"`
	Description    string    `json:"description"`
}

// ScanInfo is the metadata captured for each session group
type ScanInfo struct {
	Author      string    `json:"author"`
	DateTime    time.Time `json:"dateTime"`
	ScanType    string    `json:"scanType"`
	ScanName    string    `json:"scanName"`
	Description string    `json:"description"`
}

// Layout is the persisted arrangement of the recording screen
type Layout struct {
	ShowSettings bool   `json:"showSettings"`
	ShowLog      bool   `json:"showLog"`
	SettingsSide string `json:"settingsSide"`
	LogHeight    int    `json:"logHeight,omitempty"`
}

// DefaultLayout returns the layout used when no layout file exists
func DefaultLayout() Layout {
	return Layout{
		ShowSettings: true,
		ShowLog:      true,
		SettingsSide: "left",
	}
}

// AppState holds UI state persisted between runs
type AppState struct {
	LastPreset       string   `json:"lastPreset,omitempty"`
	RecentContainers []string `json:"recentContainers,omitempty"`
}
