package state

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var changedColor = color.New(color.FgYellow, color.Bold)

// DumpRegisters renders the 32-alias region of mem (addresses 0..31) as a
// register dump, the way the teacher VM's String method renders its GPR
// array. Addresses present in prev but holding a different value in mem
// are highlighted, so a caller stepping one instruction at a time can see
// at a glance which register just changed.
func DumpRegisters(mem map[uint32]MemoryEntry, prev map[uint32]MemoryEntry) string {
	var b strings.Builder
	for i := uint32(0); i < 32; i++ {
		value := mem[i].Value
		text := fmt.Sprintf("x%-2d=%08x", i, value)
		if prevEntry, ok := prev[i]; ok && prevEntry.Value != value {
			text = changedColor.Sprint(text)
		}
		b.WriteString(text)
		if i < 31 {
			if (i+1)%8 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
