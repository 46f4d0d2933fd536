package pvm

// accessMode is the permission carried by one page of RAM (§3.3).
type accessMode uint8

const (
	accessNone accessMode = iota
	accessRead
	accessWrite
)

// RAM is the PVM's paged memory: a flat byte store plus a per-page access
// table. Every read or write is checked one page at a time so a range that
// straddles a forbidden page faults at the first offending address, per
// §4.2's "first byte of the first insufficiently-accessible page" rule.
//
// Grounded on the teacher's probe-lang/lang/vm Memory type (flat []byte
// backing store with bounds checks on every access) but generalized from
// allocation-tracked regions to the spec's zone/page access-mode model.
type RAM struct {
	bytes   []byte
	access  []accessMode // one entry per page
	heapEnd uint32       // current SBRK break, exact byte value (not page-rounded)
	heapCap uint32       // highest address the heap is allowed to grow to
}

// NewRAM builds a RAM of MaxMemoryAddress+1 bytes with every page
// inaccessible. Callers populate it via the zone layout performed by Y
// (invoke.go) before execution starts.
func NewRAM() *RAM {
	pages := (uint64(MaxMemoryAddress) + 1) / PageSize
	return &RAM{
		bytes:  make([]byte, 0), // sized in full by ensureBacking on first use
		access: make([]accessMode, pages),
	}
}

func pageOf(addr uint32) uint32 { return addr / PageSize }

// ensureBacking sizes the flat backing store to MaxMemoryAddress+1 bytes the
// first time it is called (from grantZone or WriteDuringInit); it is not
// grown page by page. A page that has never been granted access still reads
// as a fault, never as zero bytes, because checkRange consults the access
// table before r.bytes is touched.
func (r *RAM) ensureBacking() {
	if len(r.bytes) == 0 {
		r.bytes = make([]byte, uint64(MaxMemoryAddress)+1)
	}
}

// grantZone marks every page in [start, start+size) with the given access
// mode. Used by Y to lay out the read-only, read-write, stack, and
// argument zones (§4.4).
func (r *RAM) grantZone(start, size uint32, mode accessMode) {
	r.ensureBacking()
	first, last := pageOf(start), pageOf(start+size-1)
	for p := first; p <= last && int(p) < len(r.access); p++ {
		r.access[p] = mode
	}
}

func (r *RAM) checkRange(addr uint32, length uint32, need accessMode) error {
	if length == 0 {
		return nil
	}
	first, last := pageOf(addr), pageOf(addr+length-1)
	for p := first; p <= last; p++ {
		if int(p) >= len(r.access) || r.access[p] < need {
			// Report the first offending address within this page.
			faultAddr := addr
			if p != first {
				faultAddr = p * PageSize
			}
			return newFault(faultAddr)
		}
	}
	return nil
}

// ReadOctets reads length bytes starting at addr. Every covered page must
// carry at least read access.
func (r *RAM) ReadOctets(addr uint32, length uint32) ([]byte, error) {
	if err := r.checkRange(addr, length, accessRead); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, r.bytes[addr:uint64(addr)+uint64(length)])
	return out, nil
}

// WriteOctets writes data starting at addr. Every covered page must carry
// write access.
func (r *RAM) WriteOctets(addr uint32, data []byte) error {
	if err := r.checkRange(addr, uint32(len(data)), accessWrite); err != nil {
		return err
	}
	copy(r.bytes[addr:uint64(addr)+uint64(len(data))], data)
	return nil
}

// WriteDuringInit writes data bypassing the writable-access check (used by
// Y to populate the read-only and read-write zones before execution begins)
// but still refuses the permanently reserved low region.
func (r *RAM) WriteDuringInit(addr uint32, data []byte) error {
	r.ensureBacking()
	if addr < ReservedMemoryStart || uint64(addr)+uint64(len(data)) > uint64(MaxMemoryAddress)+1 {
		return newFault(addr)
	}
	copy(r.bytes[addr:uint64(addr)+uint64(len(data))], data)
	return nil
}

// Sbrk grows the heap break by delta bytes. heap_ptr is tracked as the exact
// byte value §4.6 specifies ("new = heap_ptr + r_A", "Set heap_ptr = new") —
// only the write-access grant is rounded up to whole pages, since access
// control is necessarily page-granular. It returns the break's value before
// growth, per the SBRK handler contract.
func (r *RAM) Sbrk(delta uint32) (uint32, error) {
	prev := r.heapEnd
	if delta == 0 {
		return prev, nil
	}
	grown := uint64(prev) + uint64(delta)
	if grown > uint64(r.heapCap) {
		return 0, newFault(r.heapCap)
	}
	pageEnd := uint32(alignPage(grown))
	r.grantZone(prev, pageEnd-prev, accessWrite)
	r.heapEnd = uint32(grown)
	return prev, nil
}

// initHeap records the heap's starting break and the ceiling it may grow to
// (the base of the stack zone), called once by Y.
func (r *RAM) initHeap(start, cap uint32) {
	r.heapEnd = start
	r.heapCap = cap
}
