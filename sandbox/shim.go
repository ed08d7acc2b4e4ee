package sandbox

// Host import and guest exports wired by the trampoline module.
const (
	HostModule   = "blueboat"
	HostInvoke   = "host_invoke"
	ExportInvoke = "invoke"
	ExportMemory = "memory"
)

// Section IDs and opcodes used by the trampoline.
const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10

	kindFunc   = 0x00
	kindMemory = 0x02

	typeFunc = 0x60
	typeI32  = 0x7F
	typeI64  = 0x7E

	opLocalGet = 0x20
	opCall     = 0x10
	opEnd      = 0x0B
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// guestModule builds the core module a script runs against:
//
//	(module
//	  (type (func (param i32 i32) (result i64)))
//	  (import "blueboat" "host_invoke" (func (type 0)))
//	  (memory (export "memory") 1)
//	  (func (export "invoke") (type 0)
//	    local.get 0
//	    local.get 1
//	    call 0))
func guestModule() []byte {
	out := append([]byte(nil), wasmHeader...)

	var types []byte
	types = appendULEB128(types, 1)
	types = append(types, typeFunc)
	types = appendULEB128(types, 2)
	types = append(types, typeI32, typeI32)
	types = appendULEB128(types, 1)
	types = append(types, typeI64)
	out = appendSection(out, sectionType, types)

	var imports []byte
	imports = appendULEB128(imports, 1)
	imports = appendName(imports, HostModule)
	imports = appendName(imports, HostInvoke)
	imports = append(imports, kindFunc)
	imports = appendULEB128(imports, 0)
	out = appendSection(out, sectionImport, imports)

	var funcs []byte
	funcs = appendULEB128(funcs, 1)
	funcs = appendULEB128(funcs, 0)
	out = appendSection(out, sectionFunction, funcs)

	var mems []byte
	mems = appendULEB128(mems, 1)
	mems = append(mems, 0x00) // min only
	mems = appendULEB128(mems, 1)
	out = appendSection(out, sectionMemory, mems)

	var exports []byte
	exports = appendULEB128(exports, 2)
	exports = appendName(exports, ExportMemory)
	exports = append(exports, kindMemory)
	exports = appendULEB128(exports, 0)
	exports = appendName(exports, ExportInvoke)
	exports = append(exports, kindFunc)
	exports = appendULEB128(exports, 1) // imported host_invoke is func 0
	out = appendSection(out, sectionExport, exports)

	body := []byte{
		0x00, // no locals
		opLocalGet, 0x00,
		opLocalGet, 0x01,
		opCall, 0x00,
		opEnd,
	}
	var code []byte
	code = appendULEB128(code, 1)
	code = appendULEB128(code, uint32(len(body)))
	code = append(code, body...)
	out = appendSection(out, sectionCode, code)

	return out
}

func appendSection(dst []byte, id byte, data []byte) []byte {
	dst = append(dst, id)
	dst = appendULEB128(dst, uint32(len(data)))
	return append(dst, data...)
}

func appendName(dst []byte, name string) []byte {
	dst = appendULEB128(dst, uint32(len(name)))
	return append(dst, name...)
}

// appendULEB128 appends v as unsigned LEB128.
func appendULEB128(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}
