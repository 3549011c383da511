/*------------------------------------------------------------------------------
* viterbi.go : rate 1/2 convolutional code of galileo i/nav
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] European GNSS (Galileo) Open Service Signal In Space Interface Control
*         Document, Issue 2.0, January 2021, 4.1.4 FEC coding and interleaving
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

import "math/bits"

const (
	VIT_G1      = 0x79       /* generator polynomial 1 (1111001) */
	VIT_G2      = 0x5B       /* generator polynomial 2 (1011011), output inverted */
	VIT_STATES  = 64         /* number of trellis states */
	VIT_UNREACH = 0xFFFFFFFF /* metric of unreachable state */
)

/* encoder output symbol pair (g1<<1|g2) for state and input bit */
func convOut(state, in uint8) uint8 {
	reg := uint(state) | uint(in&1)<<6
	g1 := uint8(bits.OnesCount(reg&VIT_G1) & 1)
	g2 := uint8(bits.OnesCount(reg&VIT_G2)&1) ^ 1
	return g1<<1 | g2
}

func nextState(state, in uint8) uint8 {
	return state>>1 | (in&1)<<5
}

/* convolutional encode --------------------------------------------------------
* args   : uint8_t *data    I   information bits (0/1), starting from state 0
* return : encoded symbols (0/1), 2 per information bit
*-----------------------------------------------------------------------------*/
func ConvEncode(data []uint8) []uint8 {
	var state uint8
	sym := make([]uint8, 0, 2*len(data))

	for _, b := range data {
		out := convOut(state, b)
		sym = append(sym, out>>1, out&1)
		state = nextState(state, b)
	}
	return sym
}

/* viterbi decode --------------------------------------------------------------
* hard decision viterbi decoder starting from state 0
* args   : uint8_t *sym     I   encoded symbols (0/1)
*          uint8_t *data    O   decoded bits (len(sym)/2)
* return : path metric of the decoded sequence
* notes  : traceback starts from the best metric state at the last stage.
*          unreachable states are never selected as survivors.
*-----------------------------------------------------------------------------*/
func ViterbiDecode(sym []uint8, data []uint8) uint32 {
	var metric, next [VIT_STATES]uint32
	n := len(sym) / 2
	if len(data) < n {
		n = len(data)
	}
	prev := make([][VIT_STATES]uint8, n)

	for i := range metric {
		metric[i] = VIT_UNREACH
	}
	metric[0] = 0

	for j := 0; j < n; j++ {
		rx := sym[2*j]&1<<1 | sym[2*j+1]&1
		for i := range next {
			next[i] = VIT_UNREACH
		}
		for s := uint8(0); s < VIT_STATES; s++ {
			if metric[s] == VIT_UNREACH {
				continue
			}
			for in := uint8(0); in < 2; in++ {
				m := metric[s] + uint32(bits.OnesCount8(convOut(s, in)^rx))
				ns := nextState(s, in)
				if m < next[ns] {
					next[ns] = m
					prev[j][ns] = s
				}
			}
		}
		metric = next
	}
	best := uint8(0)
	for s := uint8(1); s < VIT_STATES; s++ {
		if metric[s] < metric[best] {
			best = s
		}
	}
	for j, s := n-1, best; j >= 0; j-- {
		data[j] = s >> 5 & 1
		s = prev[j][s]
	}
	Trace(5, "viterbi: n=%d metric=%d\n", n, metric[best])
	return metric[best]
}
