/*------------------------------------------------------------------------------
* samples.go : packed 1-bit sample file
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

/* memory mapped sample file, 8 samples per byte, lsb first */
type SampleFile struct {
	file *os.File
	data []byte
}

func OpenSampleFile(path string) (*SampleFile, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sample file: %w", err)
	}
	stat, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, fmt.Errorf("sample file: %w", err)
	}
	if stat.Size() == 0 {
		fp.Close()
		return nil, fmt.Errorf("sample file: %s is empty", path)
	}
	data, err := unix.Mmap(int(fp.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		fp.Close()
		return nil, fmt.Errorf("sample file: mmap: %w", err)
	}
	return &SampleFile{file: fp, data: data}, nil
}

func (f *SampleFile) Close() error {
	var err error
	if f.data != nil {
		err = unix.Munmap(f.data)
		f.data = nil
	}
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func (f *SampleFile) NumSamples() int {
	return len(f.data) * 8
}

/* unpack samples from sample pos into out, return number of samples */
func (f *SampleFile) Block(pos int, out []uint8) int {
	return unpackSamples(f.data, pos, out)
}

func unpackSamples(src []byte, pos int, out []uint8) int {
	n := 0
	for ; n < len(out) && pos+n < len(src)*8; n++ {
		i := pos + n
		out[n] = src[i/8] >> (i % 8) & 1
	}
	return n
}
