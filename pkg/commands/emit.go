package commands

import (
	"fmt"
	"unicode/utf8"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/detect"
)

// Printf sends formatted text as a PRINT packet. The text is truncated to
// at most MaxPrintLen bytes on a rune boundary, and nothing is sent for
// empty text.
func (d *Dispatcher) Printf(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	if len(text) == 0 {
		return
	}
	text = text[:cutPrint(text)]
	w := codec.NewWriter()
	w.AppendUint8(uint8(OpPrint)).AppendBytes([]byte(text))
	d.send(OpPrint, w)
}

// Write implements io.Writer, sending p as PRINT packets split on rune
// boundaries.
func (d *Dispatcher) Write(p []byte) (int, error) {
	for text := string(p); len(text) > 0; {
		n := cutPrint(text)
		d.Printf("%s", text[:n])
		text = text[n:]
	}
	return len(p), nil
}

// cutPrint returns the length of the longest prefix of text fitting in a
// PRINT packet without splitting a rune.
func cutPrint(text string) int {
	if len(text) <= MaxPrintLen {
		return len(text)
	}
	n := MaxPrintLen
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	if n == 0 {
		return MaxPrintLen
	}
	return n
}

// SendSamples forwards raw sample bytes as a SAMPLE_PRINT packet.
func (d *Dispatcher) SendSamples(data []byte) {
	w := codec.NewWriter()
	w.AppendUint8(uint8(OpSamplePrint)).AppendBytes(data)
	d.send(OpSamplePrint, w)
}

// SendRotorPos broadcasts the rotor position in degrees.
func (d *Dispatcher) SendRotorPos(pos float64) {
	w := codec.NewWriter()
	w.AppendUint8(uint8(OpRotorPosition)).AppendScaled32(pos, ScaleRotorPos)
	d.send(OpRotorPosition, w)
}

// SendExperimentSamples broadcasts samples in a single EXPERIMENT_SAMPLE
// packet. Nothing is sent if they don't fit.
func (d *Dispatcher) SendExperimentSamples(samples []float64) {
	if len(samples)*4+1 > codec.MaxPacketSize {
		return
	}
	w := codec.NewWriter()
	w.AppendUint8(uint8(OpExperimentSample))
	for _, s := range samples {
		w.AppendScaled32(s, ScaleExperiment)
	}
	d.send(OpExperimentSample, w)
}

// HandleResult implements detect.ResultHandler, reporting the result
// of a detection run.
func (d *Dispatcher) HandleResult(res detect.Result) {
	w := codec.NewWriter()
	w.AppendUint8(uint8(OpDetectMotorParam)).
		AppendScaled32(res.CycleIntLimit, ScaleDetect).
		AppendScaled32(res.CouplingK, ScaleDetect)
	d.send(OpDetectMotorParam, w)
}
