package xlsm

import (
	"bytes"
	"encoding/xml"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/><Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/></Types>`

const testWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/><Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

func makePackage(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func basePackage(t *testing.T) []byte {
	return makePackage(t, map[string]string{
		ContentTypesPart:           testContentTypes,
		"_rels/.rels":              "<Relationships/>",
		"xl/workbook.xml":          "<workbook/>",
		WorkbookRelsPart:           testWorkbookRels,
		"xl/worksheets/sheet1.xml": "<worksheet/>",
	}, []string{ContentTypesPart, "_rels/.rels", "xl/workbook.xml", WorkbookRelsPart, "xl/worksheets/sheet1.xml"})
}

func readParts(t *testing.T, data []byte) ([]string, map[string][]byte) {
	t.Helper()
	parts, index, err := readPackage(data)
	require.NoError(t, err)
	names := make([]string, len(parts))
	out := make(map[string][]byte)
	for name, i := range index {
		out[name] = parts[i].data
		names[i] = name
	}
	return names, out
}

func TestInject(t *testing.T) {
	vba := []byte{0xD0, 0xCF, 0x11, 0xE0, 1, 2, 3}
	out, err := Inject(basePackage(t), vba)
	require.NoError(t, err)

	names, parts := readParts(t, out)
	assert.Equal(t, ContentTypesPart, names[0])
	assert.Equal(t, VBAProjectPart, names[len(names)-1])
	assert.Equal(t, vba, parts[VBAProjectPart])
	assert.Equal(t, "<workbook/>", string(parts["xl/workbook.xml"]))

	var ct contentTypes
	require.NoError(t, xml.Unmarshal(parts[ContentTypesPart], &ct))
	assert.Equal(t, contentTypesNS, ct.Xmlns)
	assert.Contains(t, ct.Defaults, ctDefault{Extension: "bin", ContentType: VBAProjectType})
	assert.Contains(t, ct.Overrides, ctOverride{PartName: "/xl/workbook.xml", ContentType: MacroMainType})
	assert.Len(t, ct.Overrides, 2)

	var rels relationships
	require.NoError(t, xml.Unmarshal(parts[WorkbookRelsPart], &rels))
	require.Len(t, rels.Rels, 3)
	assert.Equal(t, relationship{ID: "rId4", Type: VBAProjectRel, Target: "vbaProject.bin"}, rels.Rels[2])

	got, err := ExtractVBAProject(out)
	require.NoError(t, err)
	assert.Equal(t, vba, got)

	f, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	for _, zf := range f.File {
		assert.Equal(t, zip.Deflate, zf.Method, zf.Name)
	}
}

func TestInjectTwice(t *testing.T) {
	out, err := Inject(basePackage(t), []byte("vba"))
	require.NoError(t, err)

	_, err = Inject(out, []byte("vba"))
	assert.ErrorIs(t, err, ErrAlreadyMacroEnabled)
}

func TestInjectMacroContentType(t *testing.T) {
	ct := bytes.ReplaceAll([]byte(testContentTypes), []byte(SheetMainType), []byte(MacroMainType))
	data := makePackage(t, map[string]string{
		ContentTypesPart: string(ct),
		WorkbookRelsPart: testWorkbookRels,
	}, []string{ContentTypesPart, WorkbookRelsPart})

	_, err := Inject(data, []byte("vba"))
	assert.ErrorIs(t, err, ErrAlreadyMacroEnabled)
}

func TestInjectMissingParts(t *testing.T) {
	noRels := makePackage(t, map[string]string{ContentTypesPart: testContentTypes}, []string{ContentTypesPart})
	_, err := Inject(noRels, nil)
	assert.ErrorIs(t, err, ErrMissingPart)

	noTypes := makePackage(t, map[string]string{WorkbookRelsPart: testWorkbookRels}, []string{WorkbookRelsPart})
	_, err = Inject(noTypes, nil)
	assert.ErrorIs(t, err, ErrMissingPart)

	noOverride := makePackage(t, map[string]string{
		ContentTypesPart: `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		WorkbookRelsPart: testWorkbookRels,
	}, []string{ContentTypesPart, WorkbookRelsPart})
	_, err = Inject(noOverride, nil)
	assert.ErrorIs(t, err, ErrMissingPart)

	_, err = ExtractVBAProject(basePackage(t))
	assert.ErrorIs(t, err, ErrMissingPart)

	_, err = Inject([]byte("not a zip"), nil)
	assert.Error(t, err)
}

func TestNextID(t *testing.T) {
	r := relationships{Rels: []relationship{{ID: "rId2"}, {ID: "custom"}, {ID: "rId10"}}}
	assert.Equal(t, "rId11", r.nextID())
	assert.Equal(t, "rId1", relationships{}.nextID())
}
