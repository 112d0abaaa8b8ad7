// Package terminal processes the text commands sent with TERMINAL_CMD.
// Output goes back to the host as PRINT packets.
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/flynn-archive/go-shlex"
	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/detect"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
	"github.com/robotalks/bldc.go/pkg/timeutil"
)

// MaxExperimentSamples is the number of samples fitting in one
// EXPERIMENT_SAMPLE packet.
const MaxExperimentSamples = 63

// ExperimentInterval is the interval between experiment samples.
const ExperimentInterval = time.Millisecond

// Output sends terminal output to the host.
type Output interface {
	io.Writer
	SendRotorPos(pos float64)
	SendExperimentSamples(samples []float64)
}

// RotorSensor reports the electrical rotor position in degrees.
type RotorSensor interface {
	RotorPosition() float64
}

// PhaseReporter reports the phase of the running detection.
type PhaseReporter interface {
	Phase() detect.Phase
}

// InputSetter overrides the decoded input values.
type InputSetter interface {
	SetDecodedPPM(v float64)
	SetDecodedChuk(v float64)
}

// TimeoutReporter reports the state of the command timeout.
type TimeoutReporter interface {
	Settings() (time.Duration, float64)
	Expired() bool
}

// Variables lists the configuration slots in the variable storage.
type Variables interface {
	Addresses() []uint16
	ReadVariable(addr uint16) (uint16, error)
}

// FaultRecord is a fault seen by the drive.
type FaultRecord struct {
	Code mcpwm.FaultCode
	At   time.Time
}

// Terminal is the command processor.
type Terminal struct {
	Drive    mcpwm.Drive
	Output   Output
	Detector PhaseReporter
	Inputs   InputSetter
	Timeout  TimeoutReporter
	Vars     Variables
	Clock    timeutil.Clock

	shell *ishell.Shell
	lock  sync.Mutex

	faultsLock sync.Mutex
	faults     []FaultRecord

	experiments sync.WaitGroup
}

const terminalKey = "$terminal"

// New creates a Terminal.
func New(drive mcpwm.Drive, out Output) *Terminal {
	t := &Terminal{Drive: drive, Output: out, Clock: timeutil.RealClock{}}
	t.shell = ishell.New()
	t.shell.SetOut(out)
	t.shell.Set(terminalKey, t)
	t.shell.NotFound(func(c *ishell.Context) {
		c.Printf("Invalid command: %s\ntype help to list all available commands\n", c.Args[0])
	})
	for _, cmd := range commands {
		t.shell.AddCmd(cmd)
	}
	return t
}

// WithDetector sets the detector reported by the detect command.
func (t *Terminal) WithDetector(d PhaseReporter) *Terminal {
	t.Detector = d
	return t
}

// WithInputs sets the target of the ppm and chuk commands.
func (t *Terminal) WithInputs(inputs InputSetter) *Terminal {
	t.Inputs = inputs
	return t
}

// WithTimeout sets the watchdog reported by the timeout command.
func (t *Terminal) WithTimeout(timeout TimeoutReporter) *Terminal {
	t.Timeout = timeout
	return t
}

// WithVariables sets the storage listed by the eeprom command.
func (t *Terminal) WithVariables(vars Variables) *Terminal {
	t.Vars = vars
	return t
}

// WithClock replaces the clock used for experiments.
func (t *Terminal) WithClock(clock timeutil.Clock) *Terminal {
	t.Clock = clock
	return t
}

func terminalFrom(c *ishell.Context) *Terminal {
	return c.Get(terminalKey).(*Terminal)
}

// ProcessString runs a command line.
func (t *Terminal) ProcessString(line string) {
	args, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(t.Output, "Invalid command line: %v\n", err)
		return
	}
	if len(args) == 0 {
		return
	}
	glog.V(2).Infof("terminal: %q", args)
	t.lock.Lock()
	defer t.lock.Unlock()
	if err := t.shell.Process(args...); err != nil {
		fmt.Fprintf(t.Output, "%v\n", err)
	}
}

// RecordFault adds a fault to the history printed by the faults command.
// FaultNone is ignored.
func (t *Terminal) RecordFault(code mcpwm.FaultCode) {
	if code == mcpwm.FaultNone {
		return
	}
	t.faultsLock.Lock()
	t.faults = append(t.faults, FaultRecord{Code: code, At: t.Clock.Now()})
	t.faultsLock.Unlock()
}

// Faults returns the recorded faults.
func (t *Terminal) Faults() []FaultRecord {
	t.faultsLock.Lock()
	defer t.faultsLock.Unlock()
	return append([]FaultRecord(nil), t.faults...)
}

// Wait waits for running experiments.
func (t *Terminal) Wait() {
	t.experiments.Wait()
}

func (t *Terminal) experiment(n int) {
	defer t.experiments.Done()
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = t.Drive.RPM()
		t.Clock.Sleep(ExperimentInterval)
	}
	t.Output.SendExperimentSamples(samples)
}

func setInput(c *ishell.Context, set func(InputSetter, float64)) {
	t := terminalFrom(c)
	if t.Inputs == nil {
		c.Println("Input override not available")
		return
	}
	if len(c.Args) < 1 {
		c.Println("VALUE required")
		return
	}
	v, err := strconv.ParseFloat(c.Args[0], 64)
	if err != nil || v < -1 || v > 1 {
		c.Printf("Invalid VALUE: %s (-1..1)\n", c.Args[0])
		return
	}
	set(t.Inputs, v)
	c.Printf("%s set to %.3f\n", c.Cmd.Name, v)
}

var commands = []*ishell.Cmd{
	{
		Name: "ping",
		Help: "Print pong here to see if the reply works",
		Func: func(c *ishell.Context) {
			c.Println("pong")
		},
	},
	{
		Name: "stop",
		Help: "Stop the motor",
		Func: func(c *ishell.Context) {
			terminalFrom(c).Drive.SetCurrent(0)
			c.Println("Motor stopped")
		},
	},
	{
		Name: "status",
		Help: "Print the state of the drive",
		Func: func(c *ishell.Context) {
			drive := terminalFrom(c).Drive
			c.Printf("Duty: %.3f\n", drive.DutyCycleNow())
			c.Printf("RPM: %.1f\n", drive.RPM())
			c.Printf("Input voltage: %.2f V\n", drive.InputVoltage())
			c.Printf("Tachometer: %d\n", drive.Tachometer(false))
			c.Printf("Fault: %s\n", drive.Fault())
		},
	},
	{
		Name: "faults",
		Help: "Print all faults that happened since startup",
		Func: func(c *ishell.Context) {
			faults := terminalFrom(c).Faults()
			if len(faults) == 0 {
				c.Println("No faults registered since startup")
				return
			}
			c.Println("The following faults were registered since startup:")
			for _, f := range faults {
				c.Printf("%s at %s\n", f.Code, f.At.Format(time.RFC3339Nano))
			}
		},
	},
	{
		Name: "detect",
		Help: "Print the phase of motor parameter detection",
		Func: func(c *ishell.Context) {
			t := terminalFrom(c)
			if t.Detector == nil {
				c.Println("Detection not available")
				return
			}
			c.Printf("Detection: %s\n", t.Detector.Phase())
		},
	},
	{
		Name: "rotor",
		Help: "Send the rotor position",
		Func: func(c *ishell.Context) {
			t := terminalFrom(c)
			sensor, ok := t.Drive.(RotorSensor)
			if !ok {
				c.Println("Rotor position not available")
				return
			}
			t.Output.SendRotorPos(sensor.RotorPosition())
		},
	},
	{
		Name: "experiment",
		Help: "N - Send N RPM samples",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Println("N required")
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil || n <= 0 || n > MaxExperimentSamples {
				c.Printf("Invalid N: %s (1..%d)\n", c.Args[0], MaxExperimentSamples)
				return
			}
			t := terminalFrom(c)
			t.experiments.Add(1)
			go t.experiment(n)
		},
	},
	{
		Name: "timeout",
		Help: "Print the state of the command timeout",
		Func: func(c *ishell.Context) {
			t := terminalFrom(c)
			if t.Timeout == nil {
				c.Println("Timeout not available")
				return
			}
			timeout, brake := t.Timeout.Settings()
			if timeout <= 0 {
				c.Println("Timeout: disabled")
			} else {
				c.Printf("Timeout: %v\n", timeout)
			}
			c.Printf("Brake current: %.2f A\n", brake)
			c.Printf("Expired: %t\n", t.Timeout.Expired())
		},
	},
	{
		Name: "ppm",
		Help: "VALUE - Override the decoded servo input in [-1, 1]",
		Func: func(c *ishell.Context) {
			setInput(c, InputSetter.SetDecodedPPM)
		},
	},
	{
		Name: "chuk",
		Help: "VALUE - Override the decoded nunchuk input in [-1, 1]",
		Func: func(c *ishell.Context) {
			setInput(c, InputSetter.SetDecodedChuk)
		},
	},
	{
		Name: "eeprom",
		Help: "Print how many configuration slots are stored",
		Func: func(c *ishell.Context) {
			t := terminalFrom(c)
			if t.Vars == nil {
				c.Println("Storage not available")
				return
			}
			addrs := t.Vars.Addresses()
			var stored int
			for _, addr := range addrs {
				if _, err := t.Vars.ReadVariable(addr); err == nil {
					stored++
				}
			}
			c.Printf("Configuration slots: %d, stored: %d\n", len(addrs), stored)
		},
	},
}
