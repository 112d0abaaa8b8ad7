package comm

// Parser parses bytes received.
type Parser struct {
	peerSeq PacketSeq
	state   parseState
	packet  *Packet
	recvLen int
	crc     uint16
}

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateSyncing means the communication is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the communication is synchronized and ready for packets.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means there's on-going communication for syncing or a packet.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the communication is ready for packets.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle for syncing or receiving a packet.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Sync    byte
	State   SyncState
	Packet  *Packet
	Corrupt bool // a frame failed the CRC check and was dropped
}

// WhatAboutTimer decides what to do with timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() || r.Sync == syncREQ {
		return TimerRestart
	}
	if r.State.IsReady() {
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncAck    parseState = iota // sync req sent, waiting for syncACK
	stateSyncReqSeq                   // waiting for sync seq after syncREQ
	stateSyncAckSeq                   // waiting for sync seq after syncACK
	stateMsgSeq                       // waiting for message seq
	stateMsgAckSeq                    // recv ack in MsgSeq, validate seq
	stateMsgLen                       // waiting for message length
	stateMsgData                      // waiting for message data
	stateMsgCRCHi                     // waiting for high byte of CRC
	stateMsgCRCLo                     // waiting for low byte of CRC
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSyncAck {
		return SyncStateSyncing
	}
	if p.state == stateMsgSeq {
		return SyncStateReady
	}
	if p.state > stateMsgSeq {
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() (pr ParseResult) {
	p.packet = nil
	pr.Sync, pr.Packet = p.resync()
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	corrupt := p.state == stateMsgCRCLo
	pr.Sync, pr.Packet = p.parseByte(b)
	pr.Corrupt = corrupt && pr.Packet == nil
	pr.State = p.State()
	return
}

// Timeout notifies the parser timer expires.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateMsgSeq {
		pr.Sync, pr.Packet = p.resync()
	}
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (syncCmd byte, pkt *Packet) {
	switch p.state {
	case stateSyncAck:
		switch b {
		case syncREQ:
			p.state = stateSyncReqSeq
		case syncACK:
			p.state = stateSyncAckSeq
		}
	case stateSyncReqSeq:
		if seq := PacketSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateMsgSeq
			syncCmd = syncACK
			return
		}
		return p.resync()
	case stateSyncAckSeq:
		if seq := PacketSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateMsgSeq
			return
		}
		return p.resync()
	case stateMsgSeq:
		if b == syncREQ {
			p.state = stateSyncReqSeq
			return
		}
		if b == syncACK {
			p.state = stateMsgAckSeq
			return
		}
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.packet = &Packet{Seq: p.peerSeq}
		p.peerSeq = p.peerSeq.Next()
		p.state = stateMsgLen
	case stateMsgAckSeq:
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.state = stateMsgSeq
	case stateMsgLen:
		p.packet.Data, p.recvLen = make([]byte, int(b)+1), 0
		p.state = stateMsgData
	case stateMsgData:
		p.packet.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.packet.Data) {
			p.state = stateMsgCRCHi
		}
	case stateMsgCRCHi:
		p.crc = uint16(b) << 8
		p.state = stateMsgCRCLo
	case stateMsgCRCLo:
		p.crc |= uint16(b)
		data := p.packet.Data
		if p.crc != CRC16([]byte{byte(len(data) - 1)}, data) {
			p.packet = nil
			return p.resync()
		}
		return p.packetReady()
	}
	return
}

func (p *Parser) resync() (byte, *Packet) {
	p.state = stateSyncAck
	return syncREQ, nil
}

func (p *Parser) packetReady() (syncCmd byte, pkt *Packet) {
	p.state = stateMsgSeq
	pkt, p.packet = p.packet, nil
	return
}
