package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aerissecure/greenstar/cfb"
	"github.com/aerissecure/greenstar/ovba"
	"github.com/aerissecure/greenstar/xlsm"
)

type entryReport struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Size    uint64 `json:"size"`
	Mini    bool   `json:"mini,omitempty"`
	Sectors int    `json:"sectors"`
}

type moduleReport struct {
	Name   string `json:"name"`
	Bytes  int    `json:"bytes"`
	Lines  int    `json:"lines"`
	Source string `json:"source,omitempty"`
}

type inspectReport struct {
	File    string         `json:"file"`
	Kind    string         `json:"kind"`
	Sectors int            `json:"sectors,omitempty"`
	Entries []entryReport  `json:"entries,omitempty"`
	Modules []moduleReport `json:"modules,omitempty"`
}

func typeName(t byte) string {
	switch t {
	case cfb.TypeRoot:
		return "root"
	case cfb.TypeStorage:
		return "storage"
	case cfb.TypeStream:
		return "stream"
	default:
		return fmt.Sprintf("0x%02x", t)
	}
}

func inspectCmd(args []string, stdout, stderr io.Writer) error {
	var pretty, source bool
	fs := newFlagSet("inspect", stderr, nil)
	fs.BoolVar(&pretty, "pretty", false, "pretty-print JSON output")
	fs.BoolVar(&source, "source", false, "include decompressed module source")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect takes exactly one file")
	}

	name := fs.Arg(0)
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	report, err := inspect(name, data, source)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// inspect describes a compound file, or the VBA project inside an OOXML
// package.
func inspect(name string, data []byte, source bool) (*inspectReport, error) {
	report := &inspectReport{File: name, Kind: "cfb"}

	f, err := cfb.Open(data)
	if errors.Is(err, cfb.ErrFormat) {
		bin, xerr := xlsm.ExtractVBAProject(data)
		if errors.Is(xerr, xlsm.ErrMissingPart) {
			report.Kind = "xlsx"
			return report, nil
		}
		if xerr != nil {
			return nil, fmt.Errorf("%s is neither a compound file nor a workbook: %w", name, xerr)
		}
		report.Kind = "xlsm"
		f, err = cfb.Open(bin)
	}
	if err != nil {
		return nil, err
	}

	report.Sectors = f.NumSectors()
	for _, e := range f.Entries() {
		er := entryReport{Path: e.Path, Type: typeName(e.Type), Size: e.Size}
		if e.Type == cfb.TypeStream {
			ids, mini, err := f.Chain(e.Path)
			if err != nil {
				return nil, err
			}
			er.Mini = mini
			er.Sectors = len(ids)
		}
		report.Entries = append(report.Entries, er)
	}

	for _, p := range f.Streams() {
		dir, base := path.Split(p)
		if dir != "VBA/" || base == "dir" || strings.HasPrefix(base, "_") {
			continue
		}
		raw, err := f.ReadStream(p)
		if err != nil {
			return nil, err
		}
		code, err := ovba.Decompress(raw)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", base, err)
		}
		mr := moduleReport{Name: base, Bytes: len(code), Lines: strings.Count(string(code), "\n")}
		if source {
			mr.Source = string(code)
		}
		report.Modules = append(report.Modules, mr)
	}
	sort.Slice(report.Modules, func(i, j int) bool { return report.Modules[i].Name < report.Modules[j].Name })
	return report, nil
}
