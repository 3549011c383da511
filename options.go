/*------------------------------------------------------------------------------
* options.go : receiver options functions
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2024/03/02 1.0  tracking and output options of the software receiver
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

/* option formats */
const (
	OPT_INT   = 0
	OPT_FLOAT = 1
	OPT_STR   = 2
	OPT_ENUM  = 3
)

type Opt struct { /* option type */
	Name      string   /* option name */
	Format    byte     /* option format (OPT_???) */
	VarInt    *int     /* int and enum option variable */
	VarFloat  *float64 /* float option variable */
	VarString *string  /* string option variable */
	Comment   string   /* unit or enum labels "n:label,..." */
}

type TrkOpt struct { /* receiver options type */
	Fs           float64 /* sampling frequency (Hz) */
	Fc           float64 /* intermediate frequency (Hz) */
	L1caDllBw    float64 /* L1CA dll bandwidth (Hz) */
	L1caPllBw    float64 /* L1CA pll bandwidth (Hz) */
	L1caPllOrder int     /* L1CA pll order (2,3) */
	E1DllBw      float64 /* E1 dll bandwidth (Hz) */
	E1PllBw      float64 /* E1 pll bandwidth (Hz) */
	E1FllBw      float64 /* E1 fll bandwidth (Hz) */
	E1CodeFile   string  /* E1B/E1C code table file */
	BitSyncCn0   float64 /* L1CA bit sync start cn0 (dB-Hz) */
	BitSyncMs    int     /* L1CA bit sync window (ms) */
	SolInterval  float64 /* solution interval (s) */
	InfluxUrl    string  /* influxdb server url ("": no output) */
	InfluxToken  string  /* influxdb token */
	InfluxOrg    string  /* influxdb organization */
	InfluxBucket string  /* influxdb bucket */
	PushUrl      string  /* prometheus pushgateway url ("": no push) */
	SolDb        string  /* sqlite3 solution log file ("": no log) */
	Trace        string  /* trace file ("": stdout) */
	TraceLevel   int     /* trace level (0:off) */
}

var (
	trkopt_ TrkOpt = DefaultTrkOpt()

	PLLORDOPT string = "2:second,3:third"
)

func intOpt(name string, v *int, comment string) *Opt {
	return &Opt{Name: name, Format: OPT_INT, VarInt: v, Comment: comment}
}

func enumOpt(name string, v *int, labels string) *Opt {
	return &Opt{Name: name, Format: OPT_ENUM, VarInt: v, Comment: labels}
}

func floatOpt(name string, v *float64, unit string) *Opt {
	return &Opt{Name: name, Format: OPT_FLOAT, VarFloat: v, Comment: unit}
}

func strOpt(name string, v *string) *Opt {
	return &Opt{Name: name, Format: OPT_STR, VarString: v}
}

/* options table keyed by name */
func optTable(opts ...*Opt) map[string]*Opt {
	tbl := make(map[string]*Opt, len(opts))
	for _, opt := range opts {
		tbl[opt.Name] = opt
	}
	return tbl
}

/* receiver options bound to the options buffer */
var TrkOpts = optTable(
	floatOpt("trk-fs", &trkopt_.Fs, "Hz"),
	floatOpt("trk-fc", &trkopt_.Fc, "Hz"),
	floatOpt("trk-l1ca-dllbw", &trkopt_.L1caDllBw, "Hz"),
	floatOpt("trk-l1ca-pllbw", &trkopt_.L1caPllBw, "Hz"),
	enumOpt("trk-l1ca-pllorder", &trkopt_.L1caPllOrder, PLLORDOPT),
	floatOpt("trk-e1-dllbw", &trkopt_.E1DllBw, "Hz"),
	floatOpt("trk-e1-pllbw", &trkopt_.E1PllBw, "Hz"),
	floatOpt("trk-e1-fllbw", &trkopt_.E1FllBw, "Hz"),
	strOpt("trk-e1-codefile", &trkopt_.E1CodeFile),
	floatOpt("trk-bitsync-cn0", &trkopt_.BitSyncCn0, "dB-Hz"),
	intOpt("trk-bitsync-ms", &trkopt_.BitSyncMs, "ms"),
	floatOpt("sol-interval", &trkopt_.SolInterval, "s"),
	strOpt("out-influx-url", &trkopt_.InfluxUrl),
	strOpt("out-influx-token", &trkopt_.InfluxToken),
	strOpt("out-influx-org", &trkopt_.InfluxOrg),
	strOpt("out-influx-bucket", &trkopt_.InfluxBucket),
	strOpt("out-push-url", &trkopt_.PushUrl),
	strOpt("out-soldb", &trkopt_.SolDb),
	strOpt("out-trace", &trkopt_.Trace),
	intOpt("out-tracelevel", &trkopt_.TraceLevel, ""),
)

/* default receiver options --------------------------------------------------*/
func DefaultTrkOpt() TrkOpt {
	return TrkOpt{
		Fs:           69.984e6,
		Fc:           9.334875e6,
		L1caDllBw:    L1CA_DLLBW,
		L1caPllBw:    L1CA_PLLBW,
		L1caPllOrder: 2,
		E1DllBw:      E1_DLLBW,
		E1PllBw:      E1_PLLBW,
		E1FllBw:      E1_FLLBW,
		BitSyncCn0:   BIT_SYNC_CN0,
		BitSyncMs:    BIT_SYNC_MS,
		SolInterval:  1.0,
		InfluxOrg:    "gnsssdr",
		InfluxBucket: "gnsssdr",
	}
}

/* strip comment and surrounding blanks */
func chopOpt(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ' ' || !strconv.IsGraphic(r)
	})
}

/* enum labels as value,label pairs */
func enumItems(labels string) [][2]string {
	var items [][2]string
	for _, item := range strings.Split(labels, ",") {
		if val, label, ok := strings.Cut(item, ":"); ok && val != "" {
			items = append(items, [2]string{val, label})
		}
	}
	return items
}

/* enum value to label appended to s, return length of label */
func Enum2Str(s *string, labels string, val int) int {
	str := strconv.Itoa(val)
	for _, item := range enumItems(labels) {
		if item[0] == str {
			str = item[1]
			break
		}
	}
	*s += str
	return len(str)
}

/* enum label or value to value, return status (1:ok,0:error) */
func Str2Enum(str, labels string, val *int) int {
	for _, item := range enumItems(labels) {
		if item[1] != str && item[0] != str {
			continue
		}
		n, err := strconv.Atoi(item[0])
		if err != nil {
			return 0
		}
		*val = n
		return 1
	}
	return 0
}

/* search option by name (nil: not found) */
func SearchOpt(name string, opts map[string]*Opt) *Opt {
	return opts[name]
}

/* set option value from string, return status (1:ok,0:error) */
func (opt *Opt) Str2Opt(str string) int {
	switch opt.Format {
	case OPT_INT:
		v, err := strconv.Atoi(str)
		if err != nil {
			return 0
		}
		*opt.VarInt = v
	case OPT_FLOAT:
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0
		}
		*opt.VarFloat = v
	case OPT_STR:
		*opt.VarString = str
	case OPT_ENUM:
		return Str2Enum(str, opt.Comment, opt.VarInt)
	default:
		return 0
	}
	return 1
}

/* option value appended to str, return length of value */
func (opt *Opt) Opt2Str(str *string) int {
	var v string
	switch opt.Format {
	case OPT_INT:
		v = strconv.Itoa(*opt.VarInt)
	case OPT_FLOAT:
		v = strconv.FormatFloat(*opt.VarFloat, 'g', -1, 64)
	case OPT_STR:
		v = *opt.VarString
	case OPT_ENUM:
		return Enum2Str(str, opt.Comment, *opt.VarInt)
	}
	*str += v
	return len(v)
}

/* option line "name = value # (comment)" appended to buff, return length */
func (opt *Opt) Opt2Buf(buff *string) int {
	line := fmt.Sprintf("%-18s =", opt.Name)
	opt.Opt2Str(&line)
	if opt.Comment != "" {
		line = fmt.Sprintf("%-30s # (%s)", line, opt.Comment)
	}
	line += "\n"
	*buff += line
	return len(line)
}

/* load options ----------------------------------------------------------------
* load "name = value" lines into the options table, unknown names and invalid
* values are skipped
* args   : char   *file     I  options file
*          opt_t  *opts     IO options table
* return : status (1:ok,0:file open error)
*-----------------------------------------------------------------------------*/
func LoadOpts(file string, opts map[string]*Opt) int {
	Trace(4, "loadopts: file=%s\n", file)

	fp, err := os.Open(file)
	if err != nil {
		Trace(2, "loadopts: options file open error (%s)\n", file)
		return 0
	}
	defer fp.Close()

	sc := bufio.NewScanner(fp)
	for n := 1; sc.Scan(); n++ {
		line := chopOpt(sc.Text())
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			Trace(2, "invalid option %s (%s:%d)\n", line, file, n)
			continue
		}
		if opt := SearchOpt(chopOpt(name), opts); opt != nil && opt.Str2Opt(chopOpt(value)) == 0 {
			Trace(2, "invalid option value %s (%s:%d)\n", line, file, n)
		}
	}
	return 1
}

/* save options ----------------------------------------------------------------
* write the options table sorted by name
* args   : char   *file     I  options file
*          char   *mode     I  write mode ("w":overwrite,"a":append)
*          char   *comment  I  header comment ("": no comment)
*          opt_t  *opts     I  options table
* return : status (1:ok,0:error)
*-----------------------------------------------------------------------------*/
func SaveOpts(file, mode, comment string, opts map[string]*Opt) int {
	Trace(4, "saveopts: file=%s mode=%s\n", file, mode)

	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "a" {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	fp, err := os.OpenFile(file, flag, 0644)
	if err != nil {
		Trace(2, "saveopts: options file open error (%s)\n", file)
		return 0
	}
	defer fp.Close()

	w := bufio.NewWriter(fp)
	if comment != "" {
		fmt.Fprintf(w, "# %s\n\n", comment)
	}
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buff string
	for _, name := range names {
		opts[name].Opt2Buf(&buff)
	}
	w.WriteString(buff)
	if err := w.Flush(); err != nil {
		Trace(2, "saveopts: write error (%s): %v\n", file, err)
		return 0
	}
	return 1
}

/* reset receiver options to default */
func ResetTrkOpts() {
	trkopt_ = DefaultTrkOpt()
}

/* receiver options, load with LoadOpts(file,TrkOpts) first */
func GetTrkOpts() TrkOpt {
	return trkopt_
}

/* channel options of L1CA channel ---------------------------------------------*/
func (opt *TrkOpt) L1CAChannelOpt(prn int, doppler, codeOff float64) ChannelOpt {
	return ChannelOpt{
		Prn:      prn,
		Fs:       opt.Fs,
		Fc:       opt.Fc,
		Doppler:  doppler,
		CodeOff:  codeOff,
		DllBw:    opt.L1caDllBw,
		PllBw:    opt.L1caPllBw,
		PllOrder: opt.L1caPllOrder,
		BitCn0:   opt.BitSyncCn0,
		BitMs:    opt.BitSyncMs,
	}
}

/* channel options of E1 channel -----------------------------------------------*/
func (opt *TrkOpt) E1ChannelOpt(prn int, doppler, codeOff float64) ChannelOpt {
	return ChannelOpt{
		Prn:     prn,
		Fs:      opt.Fs,
		Fc:      opt.Fc,
		Doppler: doppler,
		CodeOff: codeOff,
		DllBw:   opt.E1DllBw,
		PllBw:   opt.E1PllBw,
		FllBw:   opt.E1FllBw,
	}
}
