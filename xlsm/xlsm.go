// Package xlsm turns a plain XLSX package into a macro-enabled workbook by
// adding a VBA project part.
package xlsm

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrMissingPart is returned when the package lacks a part Inject needs.
	ErrMissingPart = errors.New("xlsm: missing package part")
	// ErrAlreadyMacroEnabled is returned when the package already carries a
	// VBA project or a macro-enabled workbook part.
	ErrAlreadyMacroEnabled = errors.New("xlsm: workbook is already macro-enabled")
)

// Part names and types.
const (
	ContentTypesPart = "[Content_Types].xml"
	WorkbookRelsPart = "xl/_rels/workbook.xml.rels"
	VBAProjectPart   = "xl/vbaProject.bin"

	SheetMainType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	MacroMainType   = "application/vnd.ms-excel.sheet.macroEnabled.main+xml"
	VBAProjectType  = "application/vnd.ms-office.vbaProject"
	VBAProjectRel   = "http://schemas.microsoft.com/office/2006/relationships/vbaProject"
	vbaTarget       = "vbaProject.bin"
	contentTypesNS  = "http://schemas.openxmlformats.org/package/2006/content-types"
	relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// ---- [Content_Types].xml ----

type contentTypes struct {
	XMLName   xml.Name     `xml:"Types"`
	Xmlns     string       `xml:"xmlns,attr"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ---- relationships ----

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// nextID returns the lowest "rIdN" above every numbered id in use.
func (r relationships) nextID() string {
	hi := 0
	for _, rel := range r.Rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > hi {
			hi = n
		}
	}
	return "rId" + strconv.Itoa(hi+1)
}

// marshalPart encodes a package part. Callers clear XMLName first so the
// decoded namespace is not written twice next to the xmlns field.
func marshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// ---- package ----

type part struct {
	hdr  zip.FileHeader
	data []byte
}

func readPackage(data []byte) ([]part, map[string]int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("xlsm: open package: %w", err)
	}
	parts := make([]part, 0, len(zr.File))
	index := make(map[string]int, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("xlsm: open %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("xlsm: read %s: %w", f.Name, err)
		}
		index[f.Name] = len(parts)
		parts = append(parts, part{hdr: f.FileHeader, data: b})
	}
	return parts, index, nil
}

func writePackage(parts []part) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		hdr := &zip.FileHeader{
			Name:     p.hdr.Name,
			Method:   zip.Deflate,
			Modified: p.hdr.Modified,
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Inject returns a copy of the XLSX package with vbaProject added as the
// workbook's VBA project. The workbook part switches to the macro-enabled
// content type, so the result should be saved with an .xlsm extension.
func Inject(xlsx, vbaProject []byte) ([]byte, error) {
	parts, index, err := readPackage(xlsx)
	if err != nil {
		return nil, err
	}
	if _, ok := index[VBAProjectPart]; ok {
		return nil, ErrAlreadyMacroEnabled
	}

	ctIdx, ok := index[ContentTypesPart]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, ContentTypesPart)
	}
	relIdx, ok := index[WorkbookRelsPart]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, WorkbookRelsPart)
	}

	// ---- content types ----
	var ct contentTypes
	if err := xml.Unmarshal(parts[ctIdx].data, &ct); err != nil {
		return nil, fmt.Errorf("xlsm: parse %s: %w", ContentTypesPart, err)
	}
	found := false
	for i, o := range ct.Overrides {
		switch o.ContentType {
		case MacroMainType:
			return nil, ErrAlreadyMacroEnabled
		case SheetMainType:
			ct.Overrides[i].ContentType = MacroMainType
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: workbook override in %s", ErrMissingPart, ContentTypesPart)
	}
	hasBin := false
	for i, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, "bin") {
			ct.Defaults[i].ContentType = VBAProjectType
			hasBin = true
		}
	}
	if !hasBin {
		ct.Defaults = append(ct.Defaults, ctDefault{Extension: "bin", ContentType: VBAProjectType})
	}
	ct.XMLName = xml.Name{}
	ct.Xmlns = contentTypesNS
	if parts[ctIdx].data, err = marshalPart(ct); err != nil {
		return nil, fmt.Errorf("xlsm: write %s: %w", ContentTypesPart, err)
	}

	// ---- workbook relationships ----
	var rels relationships
	if err := xml.Unmarshal(parts[relIdx].data, &rels); err != nil {
		return nil, fmt.Errorf("xlsm: parse %s: %w", WorkbookRelsPart, err)
	}
	rels.Rels = append(rels.Rels, relationship{ID: rels.nextID(), Type: VBAProjectRel, Target: vbaTarget})
	rels.XMLName = xml.Name{}
	rels.Xmlns = relationshipsNS
	if parts[relIdx].data, err = marshalPart(rels); err != nil {
		return nil, fmt.Errorf("xlsm: write %s: %w", WorkbookRelsPart, err)
	}

	vba := part{data: vbaProject}
	vba.hdr.Name = VBAProjectPart
	vba.hdr.Modified = parts[relIdx].hdr.Modified
	parts = append(parts, vba)

	return writePackage(parts)
}

// ExtractVBAProject returns the VBA project part of a macro-enabled package.
func ExtractVBAProject(xlsm []byte) ([]byte, error) {
	parts, index, err := readPackage(xlsm)
	if err != nil {
		return nil, err
	}
	i, ok := index[VBAProjectPart]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, VBAProjectPart)
	}
	return parts[i].data, nil
}
