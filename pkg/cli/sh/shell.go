// Package sh provides the interactive host shell.
package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bldc.go/pkg/commands"
	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/comm"
	"github.com/robotalks/bldc.go/pkg/l1/env/host"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *host.Config
	Loop   *ConnLoop
}

// ConnLoop is a running loop with a device connection.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Target string
	Loop   *fx.Loop
	Conn   l1.DeviceConn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "

	// DefaultTimeout is the time waiting for a reply.
	DefaultTimeout = time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commandList = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commandList = append(commandList, cmds...)
}

// New creates a new shell.
func New(conf *host.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     DefaultTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commandList {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints DeviceInfo into friendly string for display.
func FormatInfo(info l1.DeviceInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	if info.Meta.Firmware != "" {
		fmt.Fprintf(&w, " (firmware %s)", info.Meta.Firmware)
	}
	return w.String()
}

// Request sends a packet and waits for the reply with the same opcode.
func Request(c *ishell.Context, pkt []byte) ([]byte, error) {
	s := ShellFrom(c)
	if s.Loop == nil {
		return nil, fmt.Errorf("not connected")
	}
	f := s.Loop.Conn.DoCommand(pkt)
	select {
	case res := <-f.ResultChan():
		return res.Packet, res.Err
	case <-time.After(s.Timeout):
		return nil, context.DeadlineExceeded
	}
}

// DoCommand runs a command, waits for the reply and prints it.
func DoCommand(c *ishell.Context, pkt []byte) error {
	reply, err := Request(c, pkt)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(commands.FormatPacket(reply))
	return nil
}

// Send sends a packet expecting no reply.
func Send(c *ishell.Context, pkt []byte) error {
	s := ShellFrom(c)
	if s.Loop == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if err := s.Loop.Conn.Send(pkt); err != nil {
		c.Err(err)
		return err
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverDevices discovers devices registered with the broker.
func (s *Shell) DiscoverDevices(filter func(l1.DeviceInfo) bool) ([]l1.DeviceInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]l1.DeviceInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(l1.DeviceInfo) bool) (*l1.DeviceInfo, error) {
	infoList, err := s.DiscoverDevices(filter)
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// Connect connects the target.
func (s *Shell) Connect(target string) error {
	connLoop := &ConnLoop{Target: target}
	connLoop.Ctx, connLoop.Cancel = context.WithCancel(context.Background())
	conn, err := s.Config.Connect(connLoop.Ctx, target)
	if err != nil {
		connLoop.Cancel()
		return err
	}
	connLoop.Conn = conn
	connLoop.Loop = fx.NewLoop()
	if adder, ok := conn.(fx.LoopAdder); ok {
		connLoop.Loop.Add(adder)
	}
	connLoop.Loop.AddController(fx.PrLvPostProc, fx.ControlFunc(s.printEvents))
	s.Disconnect()
	s.Loop = connLoop
	go connLoop.Loop.Run(connLoop.Ctx)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	return nil
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Cancel()
		s.Loop.Conn.Close()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

func (s *Shell) printEvents(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if msg, ok := mctx.CurrentMessage().(*comm.EventMsg); ok {
			mctx.MessageTaken()
			s.Shell.Println(commands.FormatPacket(msg.Packet))
		}
	}))
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if target := s.Config.Target; s.AutoConnect && target != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", target)
		}
		if err := s.Connect(target); err != nil {
			log.Fatalf("connect %q failed: %v", target, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverDevices(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					infoList = []l1.DeviceInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No devices found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[serial:PORT | tcp:HOST:PORT | ws://HOST:PORT/bldc | TYPE/ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var target string
			if len(c.Args) > 0 {
				target = c.Args[0]
			} else {
				info, err := s.SelectDevice(nil)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				target = info.Ref.Name()
			}
			if err := s.Connect(target); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	host.SetupFlags()
	flag.Parse()
	New(host.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
