package comm

// CRC16 computes CRC16-CCITT (poly 0x1021, init 0xffff) over data.
func CRC16(data ...[]byte) uint16 {
	crc := uint16(0xffff)
	for _, d := range data {
		for _, b := range d {
			crc ^= uint16(b) << 8
			for i := 0; i < 8; i++ {
				if crc&0x8000 != 0 {
					crc = (crc << 1) ^ 0x1021
				} else {
					crc <<= 1
				}
			}
		}
	}
	return crc
}
