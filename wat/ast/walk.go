package ast

// Inspect walks instrs in source order. Block bodies and call_indirect
// targets are visited after their parent; returning false skips a node's
// children.
func Inspect(instrs []Instr, f func(Instr) bool) {
	for _, in := range instrs {
		inspect(in, f)
	}
}

func inspect(in Instr, f func(Instr) bool) {
	if in == nil || !f(in) {
		return
	}
	switch n := in.(type) {
	case *Block:
		Inspect(n.Body, f)
		Inspect(n.Else, f)
	case *CallIndirect:
		inspect(n.Target, f)
	}
}

// Linearize detaches call_indirect targets so the sequence reads in
// execution order: the call, then the attached instruction. Block bodies are
// linearized in place on copies; the input is not modified.
func Linearize(instrs []Instr) []Instr {
	out := make([]Instr, 0, len(instrs))
	for _, in := range instrs {
		out = appendLinear(out, in)
	}
	return out
}

func appendLinear(out []Instr, in Instr) []Instr {
	switch n := in.(type) {
	case *CallIndirect:
		call := *n
		call.Target = nil
		out = append(out, &call)
		if n.Target != nil {
			out = appendLinear(out, n.Target)
		}
		return out
	case *Block:
		b := *n
		b.Body = Linearize(n.Body)
		if n.HasElse {
			b.Else = Linearize(n.Else)
		}
		return append(out, &b)
	}
	return append(out, in)
}

// Mnemonics lists the mnemonic of each instruction of a flat sequence,
// without descending into blocks.
func Mnemonics(instrs []Instr) []string {
	out := make([]string, 0, len(instrs))
	for _, in := range instrs {
		switch n := in.(type) {
		case *Plain:
			out = append(out, n.Op)
		case *Block:
			out = append(out, n.Kind.String())
		case *CallIndirect:
			out = append(out, n.Op)
		}
	}
	return out
}
