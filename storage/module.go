package storage

import "bytes"

const (
	memoryExport = "memory"

	// maxMemoryBytes is the 32-bit linear memory address space.
	maxMemoryBytes = 1 << 32

	sectionMemory = 0x05
	sectionExport = 0x07
	exportMemory  = 0x02
	limitsMin     = 0x00
	limitsMinMax  = 0x01
)

var wasmHeader = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

// memoryModule encodes a module whose only content is one memory with the
// given limits, exported as "memory".
func memoryModule(minPages, maxPages uint32) []byte {
	var limits bytes.Buffer
	limits.WriteByte(1) // one memory
	if maxPages == 0 {
		limits.WriteByte(limitsMin)
		writeLEB128u(&limits, minPages)
	} else {
		limits.WriteByte(limitsMinMax)
		writeLEB128u(&limits, minPages)
		writeLEB128u(&limits, maxPages)
	}

	var export bytes.Buffer
	export.WriteByte(1) // one export
	writeLEB128u(&export, uint32(len(memoryExport)))
	export.WriteString(memoryExport)
	export.WriteByte(exportMemory)
	export.WriteByte(0) // memory index

	var w bytes.Buffer
	w.Write(wasmHeader)
	writeSection(&w, sectionMemory, limits.Bytes())
	writeSection(&w, sectionExport, export.Bytes())
	return w.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, payload []byte) {
	w.WriteByte(id)
	writeLEB128u(w, uint32(len(payload)))
	w.Write(payload)
}

// writeLEB128u writes an unsigned 32-bit LEB128 value
func writeLEB128u(w *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.WriteByte(b)
		if v == 0 {
			break
		}
	}
}
