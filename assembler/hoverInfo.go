package assembler

type hoverInfoFormatsType struct {
	include        string
	integerLiteral string
	condition      string

	// registers
	accumulator      string
	generic8Register string
	indexHalf        string
	pair             string
	indexRegister    string
	stackPointer     string
	indirect         string
	special          string
	flagsPair        string
}

var hoverInfoFormats = hoverInfoFormatsType{
	include:        "Included file `%s`",
	integerLiteral: "Integer Literal `%d` (`$%X`, `%%%b`)",
	condition:      "Condition `%s`\n\n%s",

	accumulator:      "Accumulator `a`. 8-Bit register, implicit target of arithmetic and logic instructions",
	generic8Register: "Register `%s`. 8-Bit General Purpose Register",
	indexHalf:        "Register `%s`. Undocumented 8-Bit half of index register `%s`",
	pair:             "Register pair `%s`. 16-Bit register made of `%c` (high) and `%c` (low)",
	indexRegister:    "Index register `%s`. 16-Bit register used for `(%s+d)` displacement addressing",
	stackPointer:     "Stack Pointer `sp`. Contains the address of the top of the stack",
	indirect:         "Memory operand `%s`. The byte addressed by the contents of `%s`",
	special:          "%s",
	flagsPair:        "Register pair `%s`. Accumulator and flags, `af'` is its shadow copy swapped by `ex af,af'`",
}

var conditionInfo = map[string]string{
	"c":  "Carry flag set",
	"nc": "Carry flag reset",
	"z":  "Zero flag set",
	"nz": "Zero flag reset",
	"p":  "Sign flag reset (positive)",
	"m":  "Sign flag set (minus)",
	"po": "Parity/overflow flag reset (parity odd)",
	"pe": "Parity/overflow flag set (parity even)",
}

var specialRegisterInfo = map[string]string{
	"i":   "Interrupt vector register `i`. High byte of the interrupt table address in mode 2",
	"r":   "Memory refresh register `r`. Incremented on every instruction fetch",
	"pc":  "Program counter `pc`",
	"(c)": "I/O port addressed by `bc`, used by `in` and `out`",
}

var instructionInfo = map[string]string{
	"adc":  "Add with Carry Instruction.\n\nFormat: `adc a, <src>` or `adc hl, <rr>`\n\nExample: `adc a, b` is the same as `a = a + b + carry`",
	"add":  "Addition Instruction.\n\nFormat: `add a, <src>` or `add hl, <rr>`\n\nExample: `add a, b` is the same as `a = a + b`",
	"and":  "AND Instruction.\n\nFormat: `and <src>`\n\nExample: `and b` is the same as `a = a & b`",
	"bit":  "Bit Test Instruction.\n\nFormat: `bit <n>, <src>`\n\nExample: `bit 7, a` sets the zero flag when bit 7 of `a` is `0`",
	"call": "Call Instruction.\n\nFormat: `call [<cc>,] <addr>`\n\nExample: `call nz, routine` pushes `pc` and jumps to `routine` when the zero flag is reset",
	"ccf":  "Complement Carry Flag Instruction.\n\nFormat: `ccf`",
	"cp":   "Compare Instruction.\n\nFormat: `cp <src>`\n\nExample: `cp b` sets the flags as `a - b` would, without changing `a`",
	"cpd":  "Compare and Decrement Instruction.\n\nFormat: `cpd`\n\nCompares `a` with `(hl)`, then decrements `hl` and `bc`",
	"cpdr": "Compare, Decrement and Repeat Instruction.\n\nFormat: `cpdr`\n\nRepeats `cpd` until `bc = 0` or a match is found",
	"cpi":  "Compare and Increment Instruction.\n\nFormat: `cpi`\n\nCompares `a` with `(hl)`, then increments `hl` and decrements `bc`",
	"cpir": "Compare, Increment and Repeat Instruction.\n\nFormat: `cpir`\n\nRepeats `cpi` until `bc = 0` or a match is found",
	"cpl":  "Complement Instruction.\n\nFormat: `cpl`\n\nExample: `cpl` is the same as `a = ^a`",
	"daa":  "Decimal Adjust Accumulator Instruction.\n\nFormat: `daa`\n\nCorrects `a` to packed BCD after an addition or subtraction",
	"dec":  "Decrement Instruction.\n\nFormat: `dec <dst>`\n\nExample: `dec hl` is the same as `hl = hl - 1`",
	"di":   "Disable Interrupts Instruction.\n\nFormat: `di`",
	"ei":   "Enable Interrupts Instruction.\n\nFormat: `ei`",
	"djnz": "Decrement and Jump if Not Zero Instruction.\n\nFormat: `djnz <addr>`\n\nExample: `djnz loop` is the same as `b = b - 1; if b != 0 { pc = loop }`\n\nThe target must be within -128 to 127 bytes.",
	"ex":   "Exchange Instruction.\n\nFormat: `ex <a>, <b>`\n\nExample: `ex de, hl` swaps the contents of `de` and `hl`",
	"exa":  "Exchange AF Instruction.\n\nFormat: `exa`\n\nShort form of `ex af, af'`",
	"exd":  "Exchange DE Instruction.\n\nFormat: `exd`\n\nShort form of `ex de, hl`",
	"exx":  "Exchange Shadow Registers Instruction.\n\nFormat: `exx`\n\nSwaps `bc`, `de` and `hl` with their shadow copies",
	"halt": "Halt Instruction.\n\nFormat: `halt`\n\nSuspends the CPU until the next interrupt",
	"im":   "Interrupt Mode Instruction.\n\nFormat: `im <0|1|2>`",
	"in":   "Input Instruction.\n\nFormat: `in <dst>, (c)` or `in a, (<port>)`",
	"inc":  "Increment Instruction.\n\nFormat: `inc <dst>`\n\nExample: `inc hl` is the same as `hl = hl + 1`",
	"ind":  "Input and Decrement Instruction.\n\nFormat: `ind`",
	"indr": "Input, Decrement and Repeat Instruction.\n\nFormat: `indr`",
	"ini":  "Input and Increment Instruction.\n\nFormat: `ini`",
	"inir": "Input, Increment and Repeat Instruction.\n\nFormat: `inir`",
	"jp":   "Jump Instruction.\n\nFormat: `jp [<cc>,] <addr>`\n\nExample: `jp z, done` is the same as `if zero { pc = done }`",
	"jr":   "Jump Relative Instruction.\n\nFormat: `jr [<cc>,] <addr>`\n\nThe target must be within -128 to 127 bytes. Only `c`, `nc`, `z` and `nz` conditions are allowed.",
	"ld":   "Load Instruction.\n\nFormat: `ld <dst>, <src>`\n\nExample: `ld a, (hl)` is the same as `a = mem[hl]`",
	"ldd":  "Load and Decrement Instruction.\n\nFormat: `ldd`\n\nExample: `ldd` is the same as `mem[de] = mem[hl]; de--; hl--; bc--`",
	"lddr": "Load, Decrement and Repeat Instruction.\n\nFormat: `lddr`\n\nRepeats `ldd` until `bc = 0`",
	"ldi":  "Load and Increment Instruction.\n\nFormat: `ldi`\n\nExample: `ldi` is the same as `mem[de] = mem[hl]; de++; hl++; bc--`",
	"ldir": "Load, Increment and Repeat Instruction.\n\nFormat: `ldir`\n\nRepeats `ldi` until `bc = 0`",
	"neg":  "Negate Instruction.\n\nFormat: `neg`\n\nExample: `neg` is the same as `a = 0 - a`",
	"nop":  "No Operation Instruction.\n\nFormat: `nop`",
	"or":   "OR Instruction.\n\nFormat: `or <src>`\n\nExample: `or b` is the same as `a = a | b`",
	"otdr": "Output, Decrement and Repeat Instruction.\n\nFormat: `otdr`",
	"otir": "Output, Increment and Repeat Instruction.\n\nFormat: `otir`",
	"out":  "Output Instruction.\n\nFormat: `out (c), <src>` or `out (<port>), a`",
	"outd": "Output and Decrement Instruction.\n\nFormat: `outd`",
	"outi": "Output and Increment Instruction.\n\nFormat: `outi`",
	"pop":  "Pop Instruction.\n\nFormat: `pop <rr>`\n\nExample: `pop bc` is the same as `bc = mem16[sp]; sp += 2`",
	"push": "Push Instruction.\n\nFormat: `push <rr>`\n\nExample: `push bc` is the same as `sp -= 2; mem16[sp] = bc`",
	"res":  "Reset Bit Instruction.\n\nFormat: `res <n>, <dst>`\n\nExample: `res 0, a` is the same as `a = a &^ 1`",
	"ret":  "Return Instruction.\n\nFormat: `ret [<cc>]`\n\nPops `pc` from the stack, optionally only when the condition holds",
	"reti": "Return from Interrupt Instruction.\n\nFormat: `reti`",
	"retn": "Return from Non-Maskable Interrupt Instruction.\n\nFormat: `retn`",
	"rl":   "Rotate Left through Carry Instruction.\n\nFormat: `rl <dst>`",
	"rla":  "Rotate Accumulator Left through Carry Instruction.\n\nFormat: `rla`",
	"rlc":  "Rotate Left Circular Instruction.\n\nFormat: `rlc <dst>`",
	"rlca": "Rotate Accumulator Left Circular Instruction.\n\nFormat: `rlca`",
	"rld":  "Rotate Left Decimal Instruction.\n\nFormat: `rld`\n\nRotates the nibbles of `a` and `(hl)` to the left",
	"rr":   "Rotate Right through Carry Instruction.\n\nFormat: `rr <dst>`",
	"rra":  "Rotate Accumulator Right through Carry Instruction.\n\nFormat: `rra`",
	"rrc":  "Rotate Right Circular Instruction.\n\nFormat: `rrc <dst>`",
	"rrca": "Rotate Accumulator Right Circular Instruction.\n\nFormat: `rrca`",
	"rrd":  "Rotate Right Decimal Instruction.\n\nFormat: `rrd`\n\nRotates the nibbles of `a` and `(hl)` to the right",
	"rst":  "Restart Instruction.\n\nFormat: `rst <vector>`\n\nExample: `rst $38` is a one byte `call $0038`",
	"sbc":  "Subtract with Carry Instruction.\n\nFormat: `sbc a, <src>` or `sbc hl, <rr>`\n\nExample: `sbc hl, de` is the same as `hl = hl - de - carry`",
	"scf":  "Set Carry Flag Instruction.\n\nFormat: `scf`",
	"set":  "Set Bit Instruction.\n\nFormat: `set <n>, <dst>`\n\nExample: `set 0, a` is the same as `a = a | 1`",
	"sla":  "Shift Left Arithmetic Instruction.\n\nFormat: `sla <dst>`\n\nExample: `sla b` is the same as `b = b << 1`",
	"sll":  "Shift Left Logical Instruction (undocumented).\n\nFormat: `sll <dst>`\n\nExample: `sll b` is the same as `b = (b << 1) | 1`",
	"slia": "Shift Left Logical Instruction (undocumented).\n\nFormat: `slia <dst>`\n\nAlias of `sll`",
	"sl1":  "Shift Left Logical Instruction (undocumented).\n\nFormat: `sl1 <dst>`\n\nAlias of `sll`",
	"sra":  "Shift Right Arithmetic Instruction.\n\nFormat: `sra <dst>`\n\nThe most-significant bit is preserved.",
	"srl":  "Shift Right Logical Instruction.\n\nFormat: `srl <dst>`\n\nExample: `srl b` is the same as `b = b >> 1`",
	"sub":  "Subtraction Instruction.\n\nFormat: `sub <src>`\n\nExample: `sub b` is the same as `a = a - b`",
	"swap": "Swap Nibbles Instruction.\n\nFormat: `swap <dst>`",
	"xor":  "XOR Instruction.\n\nFormat: `xor <src>`\n\nExample: `xor a` is the same as `a = 0`",

	// Z80N
	"ldix":    "Z80N Load and Increment Extended Instruction.\n\nFormat: `ldix`\n\nLike `ldi`, but skips the copy when the byte equals `a`",
	"ldirx":   "Z80N Load, Increment and Repeat Extended Instruction.\n\nFormat: `ldirx`\n\nLike `ldir`, but skips bytes equal to `a`",
	"lddx":    "Z80N Load and Decrement Extended Instruction.\n\nFormat: `lddx`\n\nLike `ldd` with `de` incremented, skipping bytes equal to `a`",
	"lddrx":   "Z80N Load, Decrement and Repeat Extended Instruction.\n\nFormat: `lddrx`",
	"ldws":    "Z80N Load Wide Screen Instruction.\n\nFormat: `ldws`\n\nCopies `(hl)` to `(de)`, increments `l` and `d`",
	"ldpirx":  "Z80N Load Pattern Fill Instruction.\n\nFormat: `ldpirx`\n\nRepeats a copy from an 8 byte aligned pattern at `hl`, skipping bytes equal to `a`",
	"mirror":  "Z80N Mirror Instruction.\n\nFormat: `mirror`\n\nReverses the bit order of `a`",
	"mul":     "Z80N Multiply Instruction.\n\nFormat: `mul d, e`\n\nExample: `mul d, e` is the same as `de = d * e`",
	"nextreg": "Z80N Next Register Instruction.\n\nFormat: `nextreg <reg>, <value>` or `nextreg <reg>, a`\n\nWrites a Next hardware register",
	"outinb":  "Z80N Output and Increment Instruction.\n\nFormat: `outinb`\n\nLike `outi` without decrementing `b`",
	"pixelad": "Z80N Pixel Address Instruction.\n\nFormat: `pixelad`\n\nComputes the ULA screen address of pixel `(e, d)` into `hl`",
	"pixeldn": "Z80N Pixel Down Instruction.\n\nFormat: `pixeldn`\n\nMoves `hl` one pixel row down in ULA screen memory",
	"setae":   "Z80N Set Accumulator from E Instruction.\n\nFormat: `setae`\n\nSets `a` to the pixel mask of column `e`",
	"swapnib": "Z80N Swap Nibbles Instruction.\n\nFormat: `swapnib`\n\nSwaps the high and low nibbles of `a`",
	"test":    "Z80N Test Instruction.\n\nFormat: `test <n>`\n\nSets the flags as `and <n>` would, without changing `a`",
	"bsla":    "Z80N Barrel Shift Left Arithmetic Instruction.\n\nFormat: `bsla de, b`",
	"bsra":    "Z80N Barrel Shift Right Arithmetic Instruction.\n\nFormat: `bsra de, b`",
	"bsrl":    "Z80N Barrel Shift Right Logical Instruction.\n\nFormat: `bsrl de, b`",
	"bsrf":    "Z80N Barrel Shift Right Fill Instruction.\n\nFormat: `bsrf de, b`",
	"brlc":    "Z80N Barrel Rotate Left Circular Instruction.\n\nFormat: `brlc de, b`",
}
