package pvm

import "testing"

func TestRAMReadAfterWrite(t *testing.T) {
	r := NewRAM()
	r.grantZone(ZoneSize, PageSize, accessWrite)
	if err := r.WriteOctets(ZoneSize, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteOctets: %v", err)
	}
	got, err := r.ReadOctets(ZoneSize, 4)
	if err != nil {
		t.Fatalf("ReadOctets: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestRAMFaultsOnReservedRegion(t *testing.T) {
	r := NewRAM()
	_, err := r.ReadOctets(0x10, 1)
	if err == nil {
		t.Fatal("expected fault reading reserved region")
	}
	addr, ok := FaultAddress(err)
	if !ok || addr != 0x10 {
		t.Fatalf("fault address = %v, ok=%v, want 0x10", addr, ok)
	}
}

func TestRAMFaultsOnReadOnlyWrite(t *testing.T) {
	r := NewRAM()
	r.grantZone(ZoneSize, PageSize, accessRead)
	if err := r.WriteOctets(ZoneSize, []byte{1}); err == nil {
		t.Fatal("expected fault writing to a read-only page")
	}
}

func TestSbrkGrantsWriteAccess(t *testing.T) {
	r := NewRAM()
	r.initHeap(ZoneSize, ZoneSize+4*PageSize)
	prev, err := r.Sbrk(PageSize)
	if err != nil {
		t.Fatalf("Sbrk: %v", err)
	}
	if prev != ZoneSize {
		t.Fatalf("Sbrk returned %d, want %d", prev, ZoneSize)
	}
	if err := r.WriteOctets(ZoneSize, []byte{0xAA}); err != nil {
		t.Fatalf("write into newly granted heap page: %v", err)
	}
}
