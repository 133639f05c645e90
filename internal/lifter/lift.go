package lifter

import (
	"sort"

	"github.com/xyproto/hwlift/internal/decoder"
)

// Lift converts a decoded instruction stream into a function of
// basic blocks via the three-pass construction: collect boundaries,
// translate into blocks, link successors.
func Lift(instructions []decoder.Instruction, entryAddress uint32) (*Function, error) {
	boundaries := collectBoundaries(instructions, entryAddress)

	fn := &Function{EntryAddress: entryAddress}
	blocksByStart := make(map[uint32]*BasicBlock)

	var cur *BasicBlock
	for _, inst := range instructions {
		if boundaries[inst.Address] {
			cur = &BasicBlock{Start: inst.Address, IsEntry: inst.Address == entryAddress}
			fn.Blocks = append(fn.Blocks, cur)
			blocksByStart[inst.Address] = cur
		}
		if cur == nil {
			// Input didn't start on a boundary (shouldn't happen since
			// entry is always one), open an implicit block.
			cur = &BasicBlock{Start: inst.Address, IsEntry: inst.Address == entryAddress}
			fn.Blocks = append(fn.Blocks, cur)
			blocksByStart[inst.Address] = cur
		}
		ir := convertInstruction(inst)
		cur.Instructions = append(cur.Instructions, ir)
		applyPortSummary(fn, ir)
	}

	linkBlocks(fn, blocksByStart)

	sort.Slice(fn.PortsRead, func(i, j int) bool { return fn.PortsRead[i] < fn.PortsRead[j] })
	sort.Slice(fn.PortsWritten, func(i, j int) bool { return fn.PortsWritten[i] < fn.PortsWritten[j] })
	fn.HasPortIO = len(fn.PortsRead) > 0 || len(fn.PortsWritten) > 0 || fn.DynamicPort

	return fn, nil
}

// collectBoundaries is pass 1: every branch target and the address
// following every jump/conditional-jump/loop/ret/hlt is a block start.
func collectBoundaries(instructions []decoder.Instruction, entryAddress uint32) map[uint32]bool {
	boundaries := map[uint32]bool{entryAddress: true}
	for _, inst := range instructions {
		next := inst.Address + uint32(inst.Length)
		switch inst.Op {
		case decoder.OpJmp, decoder.OpJcc, decoder.OpLoop:
			if inst.NumOperands > 0 && inst.Operands[0].Kind == decoder.OperandRelative {
				boundaries[uint32(inst.Operands[0].Imm)] = true
			}
			boundaries[next] = true
		case decoder.OpRet, decoder.OpHlt:
			boundaries[next] = true
		}
	}
	return boundaries
}

// linkBlocks is pass 3: inspect each block's terminator and set its
// successor links.
func linkBlocks(fn *Function, blocksByStart map[uint32]*BasicBlock) {
	for i, b := range fn.Blocks {
		var next *BasicBlock
		if i+1 < len(fn.Blocks) {
			next = fn.Blocks[i+1]
		}
		if len(b.Instructions) == 0 {
			b.FallThrough = next
			continue
		}
		term := b.Instructions[len(b.Instructions)-1]
		switch term.Op {
		case IRJcc:
			if term.Src1.Kind == IROperandRel {
				b.Branch = blocksByStart[uint32(term.Src1.Imm)]
			}
			b.FallThrough = next
		case IRJmp:
			if term.Src1.Kind == IROperandRel {
				b.Branch = blocksByStart[uint32(term.Src1.Imm)]
			}
		case IRRet:
			// neither link set
		default:
			b.FallThrough = next
		}
	}
}

func applyPortSummary(fn *Function, ir IRInstruction) {
	switch ir.Op {
	case IRPortIn:
		addPort(fn, &fn.PortsRead, ir.Src1)
	case IRPortOut:
		addPort(fn, &fn.PortsWritten, ir.Src1)
	}
}

func addPort(fn *Function, set *[]uint16, portOperand IROperand) {
	if portOperand.Kind == IROperandReg {
		fn.DynamicPort = true
		return
	}
	if portOperand.Kind != IROperandImm {
		return
	}
	port := uint16(portOperand.Imm)
	for _, p := range *set {
		if p == port {
			return
		}
	}
	*set = append(*set, port)
}
