package vbaproject

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// mbcs encodes s in the project code page (Windows-1252). Runes outside the
// code page are replaced.
func mbcs(s string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		// Only invalid UTF-8 reaches here.
		return []byte(s)
	}
	return b
}

func utf16le(s string) []byte {
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return b
}

// projectStream renders the PROJECT stream: project properties, host
// extender info and the editor workspace.
func projectStream(p Project, modules []Module) []byte {
	var b bytes.Buffer
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	line("ID=%q", p.ID)
	for _, m := range modules {
		if m.Document {
			line("Document=%s/&H00000000", m.Name)
		} else {
			line("Module=%s", m.Name)
		}
	}
	line("Name=%q", p.Name)
	line("HelpContextID=\"0\"")
	line("VersionCompatible32=\"393222000\"")
	line("")
	line("[Host Extender Info]")
	line("&H00000001={3832D640-CF90-11CF-8E43-00A0C911005A};VBE;&H00000000")
	line("")
	line("[Workspace]")
	for _, m := range modules {
		line("%s=0, 0, 0, 0, C", m.Name)
	}
	return mbcs(b.String())
}

// projectWMStream maps each module name to its Unicode form.
func projectWMStream(modules []Module) []byte {
	var b bytes.Buffer
	for _, m := range modules {
		b.Write(mbcs(m.Name))
		b.WriteByte(0)
		b.Write(utf16le(m.Name))
		b.Write([]byte{0, 0})
	}
	b.Write([]byte{0, 0})
	return b.Bytes()
}
