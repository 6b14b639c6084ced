package vbaproject

import (
	"bytes"
	"encoding/binary"
)

// dir stream record IDs (MS-OVBA 2.3.4.2).
const (
	recSysKind          = 0x0001
	recLCID             = 0x0002
	recCodePage         = 0x0003
	recName             = 0x0004
	recDocString        = 0x0005
	recHelpFile         = 0x0006
	recHelpContext      = 0x0007
	recLibFlags         = 0x0008
	recVersion          = 0x0009
	recConstants        = 0x000C
	recRefRegistered    = 0x000D
	recModules          = 0x000F
	recTerminator       = 0x0010
	recCookie           = 0x0013
	recLCIDInvoke       = 0x0014
	recRefName          = 0x0016
	recModuleName       = 0x0019
	recStreamName       = 0x001A
	recModuleDocString  = 0x001C
	recModuleHelpCtx    = 0x001E
	recModuleProcedural = 0x0021
	recModuleDocument   = 0x0022
	recModuleEnd        = 0x002B
	recModuleCookie     = 0x002C
	recModuleOffset     = 0x0031
	recStreamNameU      = 0x0032
	recConstantsU       = 0x003C
	recHelpFileU        = 0x003D
	recRefNameU         = 0x003E
	recDocStringU       = 0x0040
	recModuleNameU      = 0x0047
	recModuleDocStringU = 0x0048
)

const (
	sysKindWin32 = 0x00000001
	lcidEnglish  = 0x00000409
	codePage1252 = 1252

	stdoleLibID = `*\G{00020430-0000-0000-C000-000000000046}#2.0#0#C:\Windows\System32\stdole2.tlb#OLE Automation`
)

type recordWriter struct {
	buf bytes.Buffer
}

func (w *recordWriter) u16(v uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *recordWriter) u32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

// record writes id, a 32-bit size and data.
func (w *recordWriter) record(id uint16, data []byte) {
	w.u16(id)
	w.u32(uint32(len(data)))
	w.buf.Write(data)
}

func (w *recordWriter) recordU32(id uint16, v uint32) {
	w.record(id, binary.LittleEndian.AppendUint32(nil, v))
}

func (w *recordWriter) recordU16(id uint16, v uint16) {
	w.record(id, binary.LittleEndian.AppendUint16(nil, v))
}

// dirStream returns the uncompressed dir stream.
func dirStream(p Project, modules []Module) []byte {
	var w recordWriter

	// ---- PROJECTINFORMATION ----
	w.recordU32(recSysKind, sysKindWin32)
	w.recordU32(recLCID, lcidEnglish)
	w.recordU32(recLCIDInvoke, lcidEnglish)
	w.recordU16(recCodePage, codePage1252)
	w.record(recName, mbcs(p.Name))
	w.record(recDocString, nil)
	w.record(recDocStringU, nil)
	w.record(recHelpFile, nil)
	w.record(recHelpFileU, nil)
	w.recordU32(recHelpContext, 0)
	w.recordU32(recLibFlags, 0)
	// PROJECTVERSION has a fixed Reserved field of 4 followed by six bytes.
	w.u16(recVersion)
	w.u32(4)
	w.u32(1)
	w.u16(0)
	w.record(recConstants, nil)
	w.record(recConstantsU, nil)

	// ---- PROJECTREFERENCES ----
	w.record(recRefName, mbcs("stdole"))
	w.record(recRefNameU, utf16le("stdole"))
	libid := mbcs(stdoleLibID)
	ref := binary.LittleEndian.AppendUint32(nil, uint32(len(libid)))
	ref = append(ref, libid...)
	ref = binary.LittleEndian.AppendUint32(ref, 0)
	ref = binary.LittleEndian.AppendUint16(ref, 0)
	w.record(recRefRegistered, ref)

	// ---- PROJECTMODULES ----
	w.recordU16(recModules, uint16(len(modules)))
	w.recordU16(recCookie, 0xFFFF)
	for _, m := range modules {
		w.record(recModuleName, mbcs(m.Name))
		w.record(recModuleNameU, utf16le(m.Name))
		w.record(recStreamName, mbcs(m.Name))
		w.record(recStreamNameU, utf16le(m.Name))
		w.record(recModuleDocString, nil)
		w.record(recModuleDocStringU, nil)
		// Module streams hold only compressed source, no performance cache.
		w.recordU32(recModuleOffset, 0)
		w.recordU32(recModuleHelpCtx, 0)
		w.recordU16(recModuleCookie, 0xFFFF)
		if m.Document {
			w.record(recModuleDocument, nil)
		} else {
			w.record(recModuleProcedural, nil)
		}
		w.record(recModuleEnd, nil)
	}
	w.record(recTerminator, nil)

	return w.buf.Bytes()
}
