package assembler

// Mnemonic lists used for completion. The trailing character tells whether
// the instruction takes operands ('\t') or stands alone ('\n').
var Instructions = []string{
	"adc\t", "add\t", "and\t", "bit\t", "call\t", "ccf\n", "cp\t", "cpd\n",
	"cpdr\n", "cpi\n", "cpir\n", "cpl\n", "daa\n", "dec\t", "di\n", "ei\n",
	"djnz\t", "ex\t", "exa\n", "exd\n", "exx\n", "halt\n", "im\t", "in\t",
	"inc\t", "ind\n", "indr\n", "ini\n", "inir\n", "jp\t", "jr\t", "ld\t",
	"ldd\n", "lddr\n", "ldi\n", "ldir\n", "neg\n", "nop\n", "or\t", "otdr\n",
	"otir\n", "out\t", "outd\n", "outi\n", "pop\t", "push\t", "res\t", "ret\t",
	"reti\n", "retn\n", "rl\t", "rla\n", "rlc\t", "rlca\n", "rld\n", "rr\t",
	"rra\n", "rrc\t", "rrca\n", "rrd\n", "rst\t", "sbc\t", "scf\n", "set\t",
	"sla\t", "slia\t", "sll\t", "sl1\t", "swap\t", "sra\t", "srl\t", "sub\t",
	"xor\t",
}

// NextInstructions is the ZX Spectrum Next (Z80N) extension set.
var NextInstructions = []string{
	"ldix\n", "ldirx\n", "lddx\n", "lddrx\n", "ldws\n", "ldpirx\n", "mirror\n",
	"mul\t", "nextreg\t", "outinb\n", "pixelad\n", "pixeldn\n", "setae\n", "swapnib\n",
	"test\t", "bsla\t", "bsra\t", "bsrl\t", "bsrf\t", "brlc\t",
}

// Registers is ordered by tier: 8 bit and indirect operands first, then
// 16 bit pairs from RegR16Index, then stack pointer forms from RegStackIndex.
var Registers = []string{
	"a", "b", "c", "d", "e", "h", "l", "i", "r",
	"(hl)", "(de)", "(bc)", "(ix+*)", "(iy+*)", "(c)",
	"ixl", "ixh", "ixu", "lx", "hx", "xl", "xh",
	"iyl", "iyh", "iyu", "ly", "hy", "yl", "yh",
	"hl", "de", "bc", "af", "ix", "iy",
	"sp", "(sp)", "(ix)", "(iy)",
}

var Conditionals = []string{"c", "nc", "z", "nz", "p", "m", "po", "pe"}

const (
	RegR16Index   = 29
	RegStackIndex = 35
)
