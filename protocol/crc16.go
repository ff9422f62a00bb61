package protocol

// CRC16 calculates the CRC-16/MCRF4XX checksum (reflected CCITT polynomial,
// initial value 0xFFFF) used to protect status lines.
func CRC16(data []byte) uint16 {
	return UpdateCRC16(0xFFFF, data)
}

// UpdateCRC16 continues a running checksum over data
func UpdateCRC16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}
