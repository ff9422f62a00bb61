package protocol

// Line framing
// A framed line is an ASCII payload followed by '*' and the CRC16 of the
// payload as four uppercase hex digits. Framing is applied by the firmware
// and checked by host readers; newlines are not part of the frame.

import (
	"errors"
	"strings"
)

// ChecksumSep separates the payload from its checksum
const ChecksumSep = '*'

var (
	ErrNoChecksum = errors.New("line has no checksum")
	ErrChecksum   = errors.New("line checksum mismatch")
)

const hexDigits = "0123456789ABCDEF"

// AppendChecksum frames b[start:] by appending the separator and checksum.
func AppendChecksum(b []byte, start int) []byte {
	crc := CRC16(b[start:])
	return append(b, ChecksumSep,
		hexDigits[crc>>12&0xF],
		hexDigits[crc>>8&0xF],
		hexDigits[crc>>4&0xF],
		hexDigits[crc&0xF])
}

// VerifyLine checks a framed line and returns its payload. Surrounding
// whitespace, including a trailing CR LF, is ignored.
func VerifyLine(line string) (string, error) {
	line = strings.TrimSpace(line)
	sep := strings.LastIndexByte(line, ChecksumSep)
	if sep < 0 || len(line)-sep-1 != 4 {
		return "", ErrNoChecksum
	}
	payload := line[:sep]

	var want uint16
	for i := sep + 1; i < len(line); i++ {
		n := strings.IndexByte(hexDigits, upper(line[i]))
		if n < 0 {
			return "", ErrNoChecksum
		}
		want = want<<4 | uint16(n)
	}
	if UpdateCRC16(0xFFFF, []byte(payload)) != want {
		return "", ErrChecksum
	}
	return payload, nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
