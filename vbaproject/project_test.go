package vbaproject

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/richardlehane/mscfb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/greenstar/cfb"
	"github.com/aerissecure/greenstar/ovba"
)

var testModules = []Module{
	{Name: "ThisWorkbook", Document: true, Source: "Private Sub Workbook_Open()\nEnd Sub\n"},
	{Name: "Mod1", Source: "Attribute VB_Name = \"Mod1\"\nSub Hello()\n    MsgBox \"Hi\"\nEnd Sub\n"},
}

type dirRecord struct {
	id   uint16
	data []byte
}

func parseDir(t *testing.T, raw []byte) []dirRecord {
	t.Helper()
	var out []dirRecord
	for p := 0; p < len(raw); {
		require.LessOrEqual(t, p+6, len(raw))
		id := binary.LittleEndian.Uint16(raw[p:])
		size := int(binary.LittleEndian.Uint32(raw[p+2:]))
		if id == recVersion {
			size = 6
		}
		p += 6
		require.LessOrEqual(t, p+size, len(raw))
		out = append(out, dirRecord{id: id, data: raw[p : p+size]})
		p += size
	}
	return out
}

func TestBuildStreams(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, out[:8])

	f, err := cfb.Open(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"VBA/_VBA_PROJECT", "VBA/dir", "VBA/ThisWorkbook", "VBA/Mod1", "PROJECT", "PROJECTwm",
	}, f.Streams())

	hdr, err := f.ReadStream("VBA/_VBA_PROJECT")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCC, 0x61, 0xFF, 0xFF, 0x00, 0x00, 0x00}, hdr)
}

func TestBuildModuleSource(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules)
	require.NoError(t, err)
	f, err := cfb.Open(out)
	require.NoError(t, err)

	raw, err := f.ReadStream("VBA/Mod1")
	require.NoError(t, err)
	src, err := ovba.Decompress(raw)
	require.NoError(t, err)
	assert.Equal(t, "Attribute VB_Name = \"Mod1\"\r\nSub Hello()\r\n    MsgBox \"Hi\"\r\nEnd Sub\r\n", string(src))

	raw, err = f.ReadStream("VBA/ThisWorkbook")
	require.NoError(t, err)
	src, err = ovba.Decompress(raw)
	require.NoError(t, err)
	text := string(src)
	assert.True(t, strings.HasPrefix(text, "Attribute VB_Name = \"ThisWorkbook\"\r\n"))
	assert.Contains(t, text, "Attribute VB_Base = \"0{00020819-0000-0000-C000-000000000046}\"\r\n")
	assert.Contains(t, text, "Private Sub Workbook_Open()\r\n")
}

func TestBuildDirStream(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules)
	require.NoError(t, err)
	f, err := cfb.Open(out)
	require.NoError(t, err)

	raw, err := f.ReadStream("VBA/dir")
	require.NoError(t, err)
	dir, err := ovba.Decompress(raw)
	require.NoError(t, err)

	recs := parseDir(t, dir)
	require.NotEmpty(t, recs)
	assert.Equal(t, uint16(recSysKind), recs[0].id)
	assert.Equal(t, uint16(recTerminator), recs[len(recs)-1].id)

	var names, types []uint16
	var moduleNames []string
	for _, r := range recs {
		switch r.id {
		case recModules:
			assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(r.data))
		case recCodePage:
			assert.Equal(t, uint16(1252), binary.LittleEndian.Uint16(r.data))
		case recName:
			assert.Equal(t, "VBAProject", string(r.data))
		case recModuleName:
			moduleNames = append(moduleNames, string(r.data))
			names = append(names, r.id)
		case recModuleOffset:
			assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(r.data))
		case recModuleProcedural, recModuleDocument:
			types = append(types, r.id)
		}
	}
	assert.Equal(t, []string{"ThisWorkbook", "Mod1"}, moduleNames)
	assert.Equal(t, []uint16{recModuleDocument, recModuleProcedural}, types)
	assert.Len(t, names, 2)
}

func TestBuildProjectStreams(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules, WithProjectID("{11111111-2222-3333-4444-555555555555}"))
	require.NoError(t, err)
	f, err := cfb.Open(out)
	require.NoError(t, err)

	project, err := f.ReadStream("PROJECT")
	require.NoError(t, err)
	text := string(project)
	assert.True(t, strings.HasPrefix(text, "ID=\"{11111111-2222-3333-4444-555555555555}\"\r\n"))
	assert.Contains(t, text, "Document=ThisWorkbook/&H00000000\r\n")
	assert.Contains(t, text, "Module=Mod1\r\n")
	assert.Contains(t, text, "Name=\"VBAProject\"\r\n")
	assert.Contains(t, text, "[Host Extender Info]\r\n")
	assert.Contains(t, text, "[Workspace]\r\nThisWorkbook=0, 0, 0, 0, C\r\nMod1=0, 0, 0, 0, C\r\n")

	wm, err := f.ReadStream("PROJECTwm")
	require.NoError(t, err)
	want := []byte("ThisWorkbook\x00")
	want = append(want, utf16le("ThisWorkbook")...)
	want = append(want, 0, 0)
	want = append(want, []byte("Mod1\x00")...)
	want = append(want, utf16le("Mod1")...)
	want = append(want, 0, 0, 0, 0)
	assert.Equal(t, want, wm)
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()
	a, err := Build(testModules)
	require.NoError(t, err)
	b, err := Build(testModules)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestBuildProjectName(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules, WithProjectName("GreenStar"))
	require.NoError(t, err)
	f, err := cfb.Open(out)
	require.NoError(t, err)
	project, err := f.ReadStream("PROJECT")
	require.NoError(t, err)
	assert.Contains(t, string(project), "Name=\"GreenStar\"\r\n")
}

func TestBuildLargeModule(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString("    Debug.Print \"line\" & CStr(i)\n")
	}
	mods := []Module{{Name: "Big", Source: "Sub Big()\n" + b.String() + "End Sub\n"}}
	out, err := Build(mods)
	require.NoError(t, err)
	f, err := cfb.Open(out)
	require.NoError(t, err)
	raw, err := f.ReadStream("VBA/Big")
	require.NoError(t, err)
	src, err := ovba.Decompress(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "Attribute VB_Name = \"Big\"\r\nSub Big()\r\n"))
	assert.True(t, strings.HasSuffix(string(src), "End Sub\r\n"))
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	_, err := Build(nil)
	require.ErrorIs(t, err, ErrNoModules)

	_, err = Build([]Module{{Name: ""}})
	require.ErrorIs(t, err, ErrModuleName)

	_, err = Build([]Module{{Name: "A"}, {Name: "a"}})
	require.ErrorIs(t, err, ErrModuleName)

	_, err = Build([]Module{{Name: strings.Repeat("x", 32)}})
	require.ErrorIs(t, err, ErrModuleName)
}

func TestMBCSReplacesUnsupported(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []byte{0x96}, mbcs("–"))
	assert.Len(t, mbcs("中"), 1)
}

func TestBuildReadableByMSCFB(t *testing.T) {
	t.Parallel()
	out, err := Build(testModules)
	require.NoError(t, err)

	own, err := cfb.Open(out)
	require.NoError(t, err)

	r, err := mscfb.New(bytes.NewReader(out))
	require.NoError(t, err)

	var paths []string
	for {
		entry, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if entry.FileInfo().IsDir() {
			continue
		}
		path := strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
		paths = append(paths, path)

		got, err := io.ReadAll(entry)
		require.NoError(t, err, path)
		want, err := own.ReadStream(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	assert.ElementsMatch(t, []string{
		"VBA/_VBA_PROJECT", "VBA/dir", "VBA/ThisWorkbook", "VBA/Mod1", "PROJECT", "PROJECTwm",
	}, paths)
}
