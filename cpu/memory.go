package cpu

const (
	MEMORY_SIZE = 0x1001 // Bytes of memory, addresses $0000 to $1000.
	MEMORY_LAST = MEMORY_SIZE - 1
)

// Access direction for Cpu.access.
type Access bool

const (
	READ  = Access(true)
	WRITE = Access(false)
)

// Memory is the byte addressable program and data store.
type Memory [MEMORY_SIZE]byte

// check verifies that size bytes starting at addr are within memory.
func (mem *Memory) check(addr uint16, size DataSize) error {
	if !size.Valid() {
		return ErrInvalidDataSize
	}
	if int(addr)+int(size.Bytes())-1 > MEMORY_LAST {
		return ErrAddress{Addr: addr, Size: size}
	}
	return nil
}

// Load stores a single byte, for program loading.
func (mem *Memory) Load(addr uint16, data byte) (err error) {
	err = mem.check(addr, SIZE_BYTE)
	if err != nil {
		return
	}

	mem[addr] = data
	return
}

// Read returns the big-endian value of size bytes at addr.
func (mem *Memory) Read(addr uint16, size DataSize) (value uint32, err error) {
	err = mem.check(addr, size)
	if err != nil {
		return
	}

	for n := range size.Bytes() {
		value = (value << 8) | uint32(mem[addr+n])
	}
	return
}

// Write stores the low size bytes of value at addr, big-endian.
func (mem *Memory) Write(addr uint16, size DataSize, value uint32) (err error) {
	err = mem.check(addr, size)
	if err != nil {
		return
	}

	count := size.Bytes()
	for n := range count {
		shift := 8 * (count - 1 - n)
		mem[addr+n] = byte(value >> shift)
	}
	return
}

// Reset clears all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}

// access transfers between memory and MDR at MAR.
// Any failure halts the CPU.
func (cpu *Cpu) access(size DataSize, rw Access) (err error) {
	if rw == READ {
		cpu.MDR, err = cpu.Memory.Read(cpu.MAR, size)
	} else {
		err = cpu.Memory.Write(cpu.MAR, size, cpu.MDR)
	}
	if err != nil {
		cpu.H = true
		return
	}

	if cpu.Verbose {
		dir := "write"
		if rw == READ {
			dir = "read"
		}
		cpu.Log.Tracef("%v %v: MAR=$%04X MDR=$%08X", dir, size, cpu.MAR, cpu.MDR)
	}

	return
}
