// Package vbaproject assembles the vbaProject.bin part of a macro-enabled
// workbook from VBA module sources.
package vbaproject

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"strings"

	"github.com/aerissecure/greenstar/cfb"
	"github.com/aerissecure/greenstar/ovba"
)

var (
	ErrNoModules  = errors.New("vbaproject: no modules")
	ErrModuleName = errors.New("vbaproject: invalid module name")
)

// Module is one VBA code module. Document modules are bound to a host
// object (ThisWorkbook or a worksheet); all others are procedural.
type Module struct {
	Name     string
	Document bool
	Source   string
}

// Code returns the module source as stored in the project: CRLF line
// endings, led by its Attribute lines.
func (m Module) Code() string {
	return normalizeSource(m)
}

// Project holds project-level settings.
type Project struct {
	Name string
	// ID is the GUID written to the PROJECT stream, braces included.
	ID string
}

// Option configures Build.
type Option func(*Project)

// WithProjectName sets the project name, "VBAProject" by default.
func WithProjectName(name string) Option {
	return func(p *Project) { p.Name = name }
}

// WithProjectID sets the project GUID. The default is derived from the
// module names so repeated builds are byte-identical.
func WithProjectID(id string) Option {
	return func(p *Project) { p.ID = id }
}

// vbaHeader is the _VBA_PROJECT stream. Version 0xFFFF marks the
// performance cache as absent so the host recompiles from source.
var vbaHeader = []byte{0xCC, 0x61, 0xFF, 0xFF, 0x00, 0x00, 0x00}

// Build returns a compound file holding VBA/_VBA_PROJECT, VBA/dir, one
// compressed stream per module, PROJECT and PROJECTwm.
func Build(modules []Module, opts ...Option) ([]byte, error) {
	if len(modules) == 0 {
		return nil, ErrNoModules
	}
	if err := validateModules(modules); err != nil {
		return nil, err
	}

	p := Project{Name: "VBAProject"}
	for _, o := range opts {
		o(&p)
	}
	if p.ID == "" {
		p.ID = deriveID(modules)
	}

	dir := ovba.Compress(dirStream(p, modules))

	streams := []cfb.Stream{
		{Path: "VBA/_VBA_PROJECT", Data: vbaHeader},
		{Path: "VBA/dir", Data: dir},
	}
	for _, m := range modules {
		src := mbcs(normalizeSource(m))
		streams = append(streams, cfb.Stream{Path: "VBA/" + m.Name, Data: ovba.Compress(src)})
	}
	streams = append(streams,
		cfb.Stream{Path: "PROJECT", Data: projectStream(p, modules)},
		cfb.Stream{Path: "PROJECTwm", Data: projectWMStream(modules)},
	)

	out, err := cfb.Build(streams)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	return out, nil
}

func validateModules(modules []Module) error {
	seen := make(map[string]bool)
	for _, m := range modules {
		if m.Name == "" {
			return fmt.Errorf("%w: empty name", ErrModuleName)
		}
		if len([]rune(m.Name)) > 31 {
			return fmt.Errorf("%w: %q longer than 31 characters", ErrModuleName, m.Name)
		}
		if strings.ContainsAny(m.Name, "/\\:!\" ") {
			return fmt.Errorf("%w: %q", ErrModuleName, m.Name)
		}
		key := strings.ToUpper(m.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate %q", ErrModuleName, m.Name)
		}
		seen[key] = true
	}
	return nil
}

// deriveID hashes the module names into a GUID-shaped string.
func deriveID(modules []Module) string {
	h := sha1.New()
	for _, m := range modules {
		h.Write([]byte(m.Name))
		h.Write([]byte{0})
	}
	s := h.Sum(nil)
	return fmt.Sprintf("{%X-%X-%X-%X-%X}", s[0:4], s[4:6], s[6:8], s[8:10], s[10:16])
}

const (
	workbookBase  = "0{00020819-0000-0000-C000-000000000046}"
	worksheetBase = "0{00020820-0000-0000-C000-000000000046}"
)

// normalizeSource converts line endings to CRLF and adds the Attribute
// header the VBA editor expects when the source does not carry one.
func normalizeSource(m Module) string {
	src := strings.ReplaceAll(m.Source, "\r\n", "\n")
	if !strings.HasPrefix(src, "Attribute VB_Name") {
		src = attributeHeader(m) + src
	}
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	return strings.ReplaceAll(src, "\n", "\r\n")
}

func attributeHeader(m Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attribute VB_Name = %q\n", m.Name)
	if !m.Document {
		return b.String()
	}
	base := worksheetBase
	if strings.EqualFold(m.Name, "ThisWorkbook") {
		base = workbookBase
	}
	fmt.Fprintf(&b, "Attribute VB_Base = %q\n", base)
	b.WriteString("Attribute VB_GlobalNameSpace = False\n")
	b.WriteString("Attribute VB_Creatable = False\n")
	b.WriteString("Attribute VB_PredeclaredId = True\n")
	b.WriteString("Attribute VB_Exposed = True\n")
	b.WriteString("Attribute VB_TemplateDerived = False\n")
	b.WriteString("Attribute VB_Customizable = True\n")
	return b.String()
}
