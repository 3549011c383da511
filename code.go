/*------------------------------------------------------------------------------
* code.go : spreading code generators
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200D, Navstar GPS Space Segment/Navigation User Interfaces,
*         7 March, 2006, table 3-Ia
*     [2] European GNSS (Galileo) Open Service Signal In Space Interface Control
*         Document, Issue 2.0, January 2021, annex C
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

/* G2 phase selector taps of L1CA code (prn 1-32) */
var l1_taps = [MAXPRN_GPS][2]uint8{
	{2, 6}, {3, 7}, {4, 8}, {5, 9}, {1, 9}, {2, 10}, {1, 8}, {2, 9},
	{3, 10}, {2, 3}, {3, 4}, {5, 6}, {6, 7}, {7, 8}, {8, 9}, {9, 10},
	{1, 4}, {2, 5}, {3, 6}, {4, 7}, {5, 8}, {6, 9}, {1, 3}, {4, 6},
	{5, 7}, {6, 8}, {7, 9}, {8, 10}, {1, 6}, {2, 7}, {3, 8}, {4, 9}}

/* E1C secondary code CS25_1 */
var e1_secondary = [E1_SEC_LEN]uint8{
	0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 1, 0, 1, 1, 0, 0, 1, 0}

var e1_secondary_inv = func() (inv [E1_SEC_LEN]uint8) {
	for i, c := range e1_secondary {
		inv[i] = c ^ 1
	}
	return
}()

/* code generator advanced one chip at a time */
type CodeGenerator interface {
	ClockChip()
	Chip() uint8
	Index() int
}

/* L1CA gold code generator */
type CACode struct {
	index int       /* current chip index (0-1022) */
	tap1  uint8     /* first G2 tap */
	tap2  uint8     /* second G2 tap */
	g1    [11]uint8 /* G1 register, g1[0] holds the feedback bit */
	g2    [11]uint8 /* G2 register, g2[0] holds the feedback bit */
}

/* new L1CA code generator -----------------------------------------------------
* generate the L1CA code of a prn from the G1/G2 shift registers
* args   : int    prn       I   satellite prn (1-32)
*          int    start     I   chip to wind the generator forward to
* return : code generator or error for out of range prn or start chip
*-----------------------------------------------------------------------------*/
func NewCACode(prn, start int) (*CACode, error) {
	if prn < 1 || prn > MAXPRN_GPS {
		return nil, fmt.Errorf("l1ca code: invalid prn %d", prn)
	}
	if start < 0 {
		return nil, fmt.Errorf("l1ca code: invalid start chip %d", start)
	}
	code := &CACode{tap1: l1_taps[prn-1][0], tap2: l1_taps[prn-1][1]}
	for i := range code.g1 {
		code.g1[i] = 1
		code.g2[i] = 1
	}
	for i := 0; i < start%L1CA_CODE_LEN; i++ {
		code.ClockChip()
	}
	return code, nil
}

func (code *CACode) ClockChip() {
	code.g1[0] = code.g1[3] ^ code.g1[10]
	code.g2[0] = code.g2[2] ^ code.g2[3] ^ code.g2[6] ^ code.g2[8] ^ code.g2[9] ^ code.g2[10]

	copy(code.g1[1:], code.g1[:10])
	copy(code.g2[1:], code.g2[:10])

	code.index = (code.index + 1) % L1CA_CODE_LEN
}

func (code *CACode) Chip() uint8 {
	return code.g1[10] ^ code.g2[code.tap1] ^ code.g2[code.tap2]
}

func (code *CACode) Index() int {
	return code.index
}

/* E1B/E1C primary code table, read only once loaded */
type E1CodeTable struct {
	B [MAXPRN_GAL][]uint8 /* E1B (data) codes, 4092 chips each */
	C [MAXPRN_GAL][]uint8 /* E1C (pilot) codes, 4092 chips each */
}

/* load E1 code table ----------------------------------------------------------
* read E1B/E1C primary codes in the hexadecimal notation of [2] annex C
* args   : io.Reader r      I   code table, one code per line:
*                               "E1B <prn> <1023 hex digits>" or
*                               "E1C <prn> <1023 hex digits>"
* return : code table or error
* notes  : empty lines and lines starting with # are skipped. every prn given
*          must have both the E1B and the E1C code.
*-----------------------------------------------------------------------------*/
func LoadE1Codes(r io.Reader) (*E1CodeTable, error) {
	tbl := &E1CodeTable{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 1<<16)
	n := 0

	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("e1 code table line %d: expected 3 fields", n)
		}
		prn, err := strconv.Atoi(fields[1])
		if err != nil || prn < 1 || prn > MAXPRN_GAL {
			return nil, fmt.Errorf("e1 code table line %d: invalid prn %s", n, fields[1])
		}
		chips, err := hex2chips(fields[2])
		if err != nil {
			return nil, fmt.Errorf("e1 code table line %d: %w", n, err)
		}
		switch strings.ToUpper(fields[0]) {
		case "E1B":
			tbl.B[prn-1] = chips
		case "E1C":
			tbl.C[prn-1] = chips
		default:
			return nil, fmt.Errorf("e1 code table line %d: unknown code %s", n, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("e1 code table: %w", err)
	}
	for i := 0; i < MAXPRN_GAL; i++ {
		if (tbl.B[i] == nil) != (tbl.C[i] == nil) {
			return nil, fmt.Errorf("e1 code table: prn %d has only one of E1B/E1C", i+1)
		}
	}
	Trace(3, "load e1 codes: lines=%d\n", n)
	return tbl, nil
}

/* load E1 code table from file ----------------------------------------------*/
func LoadE1CodeFile(file string) (*E1CodeTable, error) {
	fp, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("e1 code file: %w", err)
	}
	defer fp.Close()
	return LoadE1Codes(fp)
}

func hex2chips(s string) ([]uint8, error) {
	if len(s) != E1_CODE_LEN/4 {
		return nil, fmt.Errorf("code length %d hex digits, expected %d", len(s), E1_CODE_LEN/4)
	}
	if len(s)%2 == 1 {
		s += "0"
	}
	buff, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	chips := make([]uint8, E1_CODE_LEN)
	for i := range chips {
		chips[i] = uint8(GetBitU(buff, i, 1))
	}
	return chips, nil
}

/* E1 code generator reading the code table */
type E1Code struct {
	index int     /* current chip index (0-4091) */
	data  []uint8 /* E1B code */
	pilot []uint8 /* E1C code */
}

/* new E1 code generator -------------------------------------------------------
* args   : E1CodeTable *tbl I   code table
*          int    prn       I   satellite prn (1-50)
*          int    start     I   initial chip
* return : code generator or error for a prn missing in the table or a
*          negative start chip
*-----------------------------------------------------------------------------*/
func NewE1Code(tbl *E1CodeTable, prn, start int) (*E1Code, error) {
	if tbl == nil {
		return nil, fmt.Errorf("e1 code: no code table")
	}
	if prn < 1 || prn > MAXPRN_GAL || tbl.C[prn-1] == nil {
		return nil, fmt.Errorf("e1 code: invalid prn %d", prn)
	}
	if start < 0 {
		return nil, fmt.Errorf("e1 code: invalid start chip %d", start)
	}
	return &E1Code{
		index: start % E1_CODE_LEN,
		data:  tbl.B[prn-1],
		pilot: tbl.C[prn-1],
	}, nil
}

func (code *E1Code) ClockChip() {
	code.index = (code.index + 1) % E1_CODE_LEN
}

/* pilot (E1C) chip */
func (code *E1Code) Chip() uint8 {
	return code.pilot[code.index]
}

/* data (E1B) chip */
func (code *E1Code) DataChip() uint8 {
	return code.data[code.index]
}

func (code *E1Code) Index() int {
	return code.index
}
